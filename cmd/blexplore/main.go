//go:build linux

// Command blexplore connects to a BLE peripheral over the kernel's L2CAP
// transport, discovers its GATT database, and prints the hierarchy.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli"

	ble "github.com/ComputeCycles/Bluetooth"
	"github.com/ComputeCycles/Bluetooth/cache"
	"github.com/ComputeCycles/Bluetooth/gatt"
	"github.com/ComputeCycles/Bluetooth/linux/l2cap"
)

func main() {
	app := cli.NewApp()
	app.Name = "blexplore"
	app.Usage = "connect to a BLE peripheral and dump its GATT database"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "addr, a", Usage: "address of the remote peripheral (MAC)"},
		cli.BoolFlag{Name: "random", Usage: "peer uses an LE random address"},
		cli.IntFlag{Name: "mtu", Value: ble.MaxMTU, Usage: "receive MTU to announce"},
		cli.StringFlag{Name: "cache", Usage: "profile cache file"},
		cli.BoolFlag{Name: "force", Usage: "rediscover even when the profile is cached"},
		cli.DurationFlag{Name: "sub", Usage: "subscribe to notifications for this long"},
		cli.BoolFlag{Name: "debug", Usage: "debug logging"},
	}
	app.Action = explore

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func explore(c *cli.Context) error {
	addr := c.String("addr")
	if addr == "" {
		return cli.NewExitError("an address is required (-addr)", 1)
	}
	if c.Bool("debug") {
		ble.SetLogLevelDebug()
	}

	conn, err := l2cap.Dial(ble.NewAddr(addr), c.Bool("random"))
	if err != nil {
		return err
	}

	opts := []ble.ClientOption{ble.OptRxMTU(c.Int("mtu"))}
	if f := c.String("cache"); f != "" {
		opts = append(opts, ble.OptGattCache(cache.New(f)))
	}
	cln, err := gatt.NewClient(conn, opts...)
	if err != nil {
		conn.Close()
		return err
	}
	defer cln.CancelConnection()

	p, err := cln.DiscoverProfile(c.Bool("force"))
	if err != nil {
		return err
	}
	dump(p)

	if d := c.Duration("sub"); d > 0 {
		if err := subscribeAll(cln, p, d); err != nil {
			return err
		}
	}
	return nil
}

func dump(p *ble.Profile) {
	for _, s := range p.Services {
		fmt.Printf("service: %s %s [0x%04X..0x%04X]\n", s.UUID, ble.Name(s.UUID), s.Handle, s.EndHandle)
		for _, c := range s.Characteristics {
			fmt.Printf("  characteristic: %s %s props 0x%02X value 0x%04X\n",
				c.UUID, ble.Name(c.UUID), c.Property, c.ValueHandle)
			for _, d := range c.Descriptors {
				fmt.Printf("    descriptor: %s %s handle 0x%04X\n", d.UUID, ble.Name(d.UUID), d.Handle)
			}
		}
	}
}

func subscribeAll(cln *gatt.Client, p *ble.Profile, d time.Duration) error {
	for _, s := range p.Services {
		for _, c := range s.Characteristics {
			if c.Property&ble.CharNotify == 0 || c.CCCD == nil {
				continue
			}
			c := c
			h := func(v []byte) {
				fmt.Printf("notify %s: [% X]\n", c.UUID, v)
			}
			if err := cln.Subscribe(c, false, h); err != nil {
				return err
			}
		}
	}
	time.Sleep(d)
	return cln.ClearSubscriptions()
}
