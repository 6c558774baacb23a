package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"vampgotchi/pkg/api"
	"vampgotchi/pkg/apmon"
	"vampgotchi/pkg/bleeding"
	"vampgotchi/pkg/config"
	"vampgotchi/pkg/control"
	"vampgotchi/pkg/display"
	"vampgotchi/pkg/models"
	"vampgotchi/pkg/netmode"
	"vampgotchi/pkg/state"
	"vampgotchi/pkg/sysinfo"
)

const (
	appName    = "vampgotchi"
	appVersion = "1.0.0"
)

var log = logrus.New()

func main() {
	app := &cli.App{
		Name:        appName,
		Usage:       "Bluetooth monitoring appliance with an e-paper pet",
		Version:     appVersion,
		HideVersion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"VAMPGOTCHI_LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			level, err := logrus.ParseLevel(c.String("log-level"))
			if err != nil {
				level = logrus.InfoLevel
			}
			log.SetLevel(level)
			log.SetFormatter(&logrus.TextFormatter{
				FullTimestamp:   true,
				TimestampFormat: "2006-01-02 15:04:05",
			})
			return nil
		},
		Commands: []*cli.Command{
			commandServe(),
			commandScan(),
			commandVersion(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandServe() *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"run"},
		Usage:   "Run the appliance: display loop, auto-scan and web dashboard",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DebugMode {
				log.SetLevel(logrus.DebugLevel)
			}
			if os.Geteuid() != 0 {
				log.Warn("Not running as root; network switching and port 80 will fail")
			}

			st := state.New(log)
			st.SetNetwork(netmode.Detect(cfg.APIP))

			runner, err := bleeding.NewRunner(cfg.BleedingPath, cfg.ToolExtraArgs, log)
			if err != nil {
				return err
			}
			switcher := netmode.NewSwitcher(log, netmode.ExecRunner{}, netmode.DefaultPaths())
			ctrl := control.New(log, st, runner, switcher, cfg.ScanTimeoutDuration(), cfg.AttackTimeoutDuration())
			defer ctrl.Stop()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			// Display is optional hardware.
			driver, err := display.Probe()
			if err != nil {
				log.Warnf("Display unavailable (%v), rendering in memory only", err)
			}
			loop := display.NewLoop(log, driver, st, cfg.DisplayMode, cfg.FullRefreshInterval)
			go loop.Run(ctx)

			var monitor *apmon.Monitor
			if cfg.APMonitor {
				monitor = apmon.New(cfg.APInterface, "", log)
				// Runtime mode switches toggle the capture from here on.
				ctrl.SetClientMonitor(monitor)
				if mode, _ := netmode.Detect(cfg.APIP); mode == models.ModeAP {
					if err := monitor.Start(); err != nil {
						log.Warnf("AP client monitor disabled: %v", err)
					}
				}
			}

			if err := ctrl.StartAutoScan(time.Duration(cfg.ScanInterval) * time.Second); err != nil {
				log.Warnf("Auto-scan disabled: %v", err)
			}

			srv := api.NewServer(log, st, ctrl, loop, monitor, cfg)
			stopWatch, err := config.Watch(log, func(next config.Config) {
				srv.SetConfig(next)
			})
			if err != nil {
				log.Warnf("Config watcher disabled: %v", err)
			} else {
				defer stopWatch()
			}

			printBanner(cfg)
			return srv.Run()
		},
	}
}

func commandScan() *cli.Command {
	return &cli.Command{
		Name:    "scan",
		Aliases: []string{"s"},
		Usage:   "Run a one-shot BLE scan and print the targets",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 20 * time.Second,
				Usage: "How long to scan",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			runner, err := bleeding.NewRunner(cfg.BleedingPath, cfg.ToolExtraArgs, log)
			if err != nil {
				return err
			}

			color.Cyan("Scanning for BLE devices (%s)...", c.Duration("timeout"))
			result, err := runner.Scan(context.Background(), c.Duration("timeout"))
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}

			if len(result.Reports) == 0 {
				color.Yellow("No devices found")
				return nil
			}
			color.Green("Found %d device(s):", len(result.Reports))
			for _, rep := range result.Reports {
				fmt.Printf("  %-17s  %-20s  %d dBm\n", rep.MAC, rep.Name, rep.RSSI)
			}
			return nil
		},
	}
}

func commandVersion() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print version information",
		Action: func(c *cli.Context) error {
			fmt.Printf("%s v%s\n", appName, appVersion)
			return nil
		},
	}
}

func printBanner(cfg config.Config) {
	ip := sysinfo.LocalIP()
	color.Magenta("==================================================")
	color.Magenta("  VampGotchi - Bluetooth Monitoring Device")
	color.Cyan("  Dashboard: http://%s%s", ip, cfg.ListenAddr)
	color.Cyan("  Display:   %s theme", cfg.DisplayMode)
	color.Magenta("==================================================")
}
