package display

import (
	"fmt"
	"image"
	"time"

	"vampgotchi/pkg/models"
	"vampgotchi/pkg/state"
)

// Renderer composes the VampGotchi frame from a state snapshot. The
// layout follows the panel design: status bar, title, stat rows, coffin
// status, action bar, money block, activity log and the pet itself.
type Renderer struct{}

// Render draws the full layout and returns the frame.
func (Renderer) Render(snap state.Snapshot, theme string, now time.Time) *image.Gray {
	c := newCanvas(theme)

	// Top status bar.
	drawBatteryIcon(c, 2, 1)
	drawWifiIcon(c, 18, 1)
	c.text(26, 0, "wi")
	c.text(50, 0, "RPi")
	c.text(87, 0, now.Format("15:04"))

	// Title.
	c.text(5, 12, "VAMPIGOTCHI")
	drawBatIcon(c, 100, 14)

	// Stat rows.
	hungerPct := snap.Gotchi.Hunger * 100 / 1000
	drawCoffinIcon(c, 5, 28)
	c.text(15, 26, fmt.Sprintf("HUNGER: [%d%%]/1000", hungerPct))
	drawPotionIcon(c, 5, 39)
	c.text(15, 37, fmt.Sprintf("BLOOD: [%d%%]", snap.Gotchi.Blood))
	c.text(5, 48, fmt.Sprintf("LEVEL: %d / EXP: %d/%d", snap.Gotchi.Level, snap.Gotchi.Exp, snap.Gotchi.ExpToNext))

	c.text(5, 59, fmt.Sprintf("COFFIN: %s", snap.Gotchi.Coffin))

	drawActionBar(c, 5, 71)

	// Money and player level.
	c.text(5, 82, fmt.Sprintf("$%d", snap.Gotchi.Money))
	c.text(5, 93, "LVL")
	c.text(5, 104, fmt.Sprintf("%d", snap.Gotchi.PlayerLevel))

	// Last two activity lines.
	activity := snap.Gotchi.Activity
	if len(activity) > 2 {
		activity = activity[len(activity)-2:]
	}
	for i, msg := range activity {
		c.text(50, 82+i*12, msg)
	}

	drawVampireChibi(c, 190, 75, snap.Mood)

	return c.img
}

func drawBatteryIcon(c *canvas, x, y int) {
	c.rect(x, y, x+12, y+6)
	c.fillRect(x+12, y+2, x+14, y+4)
	c.fillRect(x+2, y+1, x+4, y+5)
	c.fillRect(x+5, y+1, x+7, y+5)
	c.fillRect(x+8, y+1, x+10, y+5)
}

func drawWifiIcon(c *canvas, x, y int) {
	c.arc(x, y+2, x+8, y+10, 45, 135)
	c.arc(x+2, y+4, x+6, y+8, 45, 135)
	c.fillEllipse(x+3, y+5, x+5, y+7)
}

func drawBatIcon(c *canvas, x, y int) {
	c.fillEllipse(x+3, y+2, x+7, y+6)
	c.polygon([]image.Point{{x, y + 4}, {x + 2, y + 2}, {x + 3, y + 4}})
	c.polygon([]image.Point{{x + 7, y + 4}, {x + 8, y + 2}, {x + 10, y + 4}})
}

func drawCoffinIcon(c *canvas, x, y int) {
	c.fillRect(x, y+2, x+8, y+6)
	c.arc(x-1, y, x+9, y+4, 180, 360)
}

func drawPotionIcon(c *canvas, x, y int) {
	c.rect(x+2, y+2, x+6, y+6)
	c.fillRect(x+3, y, x+5, y+2)
	c.fillRect(x+3, y+3, x+5, y+5)
}

// drawActionBar draws the five small item icons: garlic, hammer,
// diamond, moon and scroll.
func drawActionBar(c *canvas, x, y int) {
	c.ellipse(x, y, x+6, y+6)

	x += 20
	c.fillRect(x, y+1, x+4, y+5)
	c.fillRect(x+4, y, x+7, y+2)

	x += 20
	c.polygon([]image.Point{{x + 3, y}, {x + 6, y + 3}, {x + 3, y + 6}, {x, y + 3}})

	x += 20
	c.arc(x, y, x+6, y+6, 45, 225)

	x += 20
	c.rect(x, y, x+5, y+6)
	c.line(x+1, y+1, x+4, y+1)
	c.line(x+1, y+3, x+4, y+3)
}

// drawVampireChibi draws the pet. Eyes follow mood; everything else is
// static: horn-shaped hair, fangs, collar, cape, bow tie and a ground
// line.
func drawVampireChibi(c *canvas, x, y int, mood models.Mood) {
	c.ellipse(x+3, y+3, x+25, y+25) // head

	c.polygon([]image.Point{{x + 5, y + 1}, {x + 8, y + 5}, {x + 7, y + 7}})
	c.polygon([]image.Point{{x + 21, y + 1}, {x + 18, y + 5}, {x + 19, y + 7}})

	switch mood {
	case models.MoodHappy, models.MoodExcited:
		// A wink: left eye open, right eye a line.
		c.fillEllipse(x+8, y+11, x+11, y+14)
		c.line(x+17, y+12, x+20, y+12)
	case models.MoodAngry:
		c.line(x+8, y+13, x+11, y+11)
		c.line(x+17, y+11, x+20, y+13)
	default: // sad, bored
		c.fillEllipse(x+8, y+11, x+11, y+14)
		c.fillEllipse(x+17, y+11, x+20, y+14)
	}

	// Fangs.
	c.fillRect(x+11, y+17, x+12, y+20)
	c.fillRect(x+17, y+17, x+18, y+20)

	// Collar and cape.
	c.arc(x+5, y+23, x+23, y+29, 0, 180)
	c.arc(x+3, y+25, x+25, y+35, 0, 180)

	// Bow tie.
	c.polygon([]image.Point{{x + 12, y + 22}, {x + 13, y + 23}, {x + 14, y + 22}, {x + 13, y + 21}})

	c.line(x, y+35, x+28, y+35)
}
