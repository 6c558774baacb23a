// Package netmode flips the appliance between Wi-Fi access-point and
// client roles by rewriting daemon configuration files and restarting the
// corresponding systemd units. Every step is best effort: failures are
// logged and the sequence continues, with no rollback or confirmation.
package netmode

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"

	"vampgotchi/pkg/models"
	"vampgotchi/pkg/sysinfo"
)

// CommandRunner executes a system command. systemctl in production, a
// recorder in tests.
type CommandRunner interface {
	Run(name string, args ...string) error
}

// ExecRunner runs commands through os/exec, discarding output like the
// daemons' own noise deserves.
type ExecRunner struct{}

func (ExecRunner) Run(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// Paths locates the generated daemon configuration files.
type Paths struct {
	Hostapd       string
	Dnsmasq       string
	WPASupplicant string
	Dhcpcd        string
}

// DefaultPaths are the stock Raspberry Pi OS locations.
func DefaultPaths() Paths {
	return Paths{
		Hostapd:       "/etc/hostapd/hostapd.conf",
		Dnsmasq:       "/etc/dnsmasq.conf",
		WPASupplicant: "/etc/wpa_supplicant/wpa_supplicant.conf",
		Dhcpcd:        "/etc/dhcpcd.conf",
	}
}

// APSettings describes the access point to bring up.
type APSettings struct {
	SSID      string
	Pass      string
	IP        string
	Interface string
}

// Switcher performs the mode transitions.
type Switcher struct {
	logger *logrus.Logger
	runner CommandRunner
	paths  Paths
}

// NewSwitcher builds a Switcher. A nil runner means real systemctl.
func NewSwitcher(logger *logrus.Logger, runner CommandRunner, paths Paths) *Switcher {
	if logger == nil {
		logger = logrus.New()
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Switcher{logger: logger, runner: runner, paths: paths}
}

// Detect derives the current mode from the host IP: an address inside the
// AP subnet means we are the access point. The mode is never stored
// authoritatively anywhere else.
func Detect(apIP string) (models.NetworkMode, string) {
	ip := sysinfo.LocalIP()
	if strings.HasPrefix(ip, subnetPrefix(apIP)+".") {
		return models.ModeAP, ip
	}
	return models.ModeClient, ip
}

// SwitchToAP stops the client-mode daemons, writes the AP configuration
// and brings up hostapd and dnsmasq.
func (s *Switcher) SwitchToAP(ap APSettings) {
	s.logger.Info("Switching to AP mode...")

	s.systemctl("stop", "wpa_supplicant")
	s.systemctl("stop", "dhcpcd")

	s.writeFile(s.paths.Hostapd, hostapdConf(ap))
	s.writeFile(s.paths.Dnsmasq, dnsmasqConf(ap))
	s.appendFile(s.paths.Dhcpcd, dhcpcdStanza(ap))

	s.systemctl("daemon-reload")
	s.systemctl("restart", "dhcpcd")
	s.systemctl("unmask", "hostapd")
	s.systemctl("restart", "hostapd")
	s.systemctl("restart", "dnsmasq")
}

// SwitchToClient stops the AP daemons, writes the supplicant configuration
// for the given network and restarts wpa_supplicant.
func (s *Switcher) SwitchToClient(ssid, password string) {
	s.logger.Infof("Switching to client mode (%s)...", ssid)

	s.systemctl("stop", "hostapd")
	s.systemctl("stop", "dnsmasq")

	s.writeFile(s.paths.WPASupplicant, wpaSupplicantConf(ssid, password))

	s.systemctl("restart", "wpa_supplicant")
}

func (s *Switcher) systemctl(args ...string) {
	if err := s.runner.Run("systemctl", args...); err != nil {
		s.logger.Warnf("systemctl %s: %v", strings.Join(args, " "), err)
	}
}

func (s *Switcher) writeFile(path, content string) {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		s.logger.Errorf("Error writing %s: %v", path, err)
	}
}

func (s *Switcher) appendFile(path, content string) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		s.logger.Errorf("Error opening %s: %v", path, err)
		return
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		s.logger.Errorf("Error appending to %s: %v", path, err)
	}
}

func subnetPrefix(apIP string) string {
	parts := strings.Split(apIP, ".")
	if len(parts) != 4 {
		return "192.168.4"
	}
	return strings.Join(parts[:3], ".")
}

func hostapdConf(ap APSettings) string {
	return fmt.Sprintf(`interface=%s
driver=nl80211
ssid=%s
hw_mode=g
channel=7
wmm_enabled=0
macaddr_acl=0
auth_algs=1
ignore_broadcast_ssid=0
wpa=2
wpa_passphrase=%s
wpa_key_mgmt=WPA-PSK
wpa_pairwise=CCMP
rsn_pairwise=CCMP
`, ap.Interface, ap.SSID, ap.Pass)
}

func dnsmasqConf(ap APSettings) string {
	prefix := subnetPrefix(ap.IP)
	return fmt.Sprintf(`interface=%s
dhcp-range=%s.2,%s.20,255.255.255.0,24h
`, ap.Interface, prefix, prefix)
}

func dhcpcdStanza(ap APSettings) string {
	return fmt.Sprintf("\ninterface %s\nstatic ip_address=%s/24\nnohook wpa_supplicant\n",
		ap.Interface, ap.IP)
}

func wpaSupplicantConf(ssid, password string) string {
	return fmt.Sprintf(`ctrl_interface=DIR=/var/run/wpa_supplicant GROUP=netdev
update_config=1
country=US

network={
    ssid="%s"
    psk="%s"
    key_mgmt=WPA-PSK
}
`, escapeQuoted(ssid), escapeQuoted(password))
}

// escapeQuoted makes a value safe inside wpa_supplicant double quotes.
// Credentials used to be interpolated verbatim, which broke the generated
// file for any SSID or passphrase containing a quote.
func escapeQuoted(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `"`, `\"`)
}
