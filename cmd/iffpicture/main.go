package main

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/iffpicture"
	"github.com/bodgit/iffpicture/iff"
	"github.com/bodgit/iffpicture/picture"
	"github.com/urfave/cli/v2"
)

const defaultDB = "iffpicture.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version, V",
		Usage: "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func pngTarget(src string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + ".png"
}

func printInfo(file string) error {
	data, err := ioutil.ReadFile(file)
	if err != nil {
		return err
	}

	f, err := iff.Parse(data)
	if err != nil {
		return err
	}
	p, err := picture.New(f)
	if err != nil {
		return err
	}
	prof, err := p.Analyze()
	if err != nil {
		return err
	}

	fmt.Printf("Form:        %s\n", p.Form)
	fmt.Printf("Size:        %dx%d\n", p.Header.Width, p.Header.Height)
	fmt.Printf("Planes:      %d\n", p.Header.NPlanes)
	fmt.Printf("Color type:  %s\n", prof.ColorType)
	fmt.Printf("Compressed:  %t\n", prof.IsCompressed)
	fmt.Printf("HAM:         %t\n", prof.IsHAM)
	fmt.Printf("EHB:         %t\n", prof.IsEHB)
	fmt.Printf("Alpha:       %t\n", prof.HasAlpha)
	if p.FaxHeader != nil {
		fmt.Printf("Fax coding:  %s\n", p.FaxHeader.CompressionName())
	}
	if p.ColorMap != nil {
		fmt.Printf("Colors:      %d", p.ColorMap.NumColors)
		if p.ColorMap.Is4Bit {
			fmt.Printf(" (4-bit)")
		}
		fmt.Println()
	}
	if p.Metadata.Author != "" {
		fmt.Printf("Author:      %s\n", p.Metadata.Author)
	}
	if p.Metadata.Copyright != "" {
		fmt.Printf("Copyright:   %s\n", p.Metadata.Copyright)
	}
	for _, anno := range p.Metadata.Annotations {
		fmt.Printf("Annotation:  %s\n", anno)
	}
	if p.Metadata.HasDPI {
		fmt.Printf("DPI:         %dx%d\n", p.Metadata.DPIX, p.Metadata.DPIY)
	}

	return nil
}

func main() {
	app := cli.NewApp()

	app.Name = "iffpicture"
	app.Usage = "IFF picture conversion utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"IFFPICTURE_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to catalog database",
		},
		&cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "convert",
			Usage:       "Convert an IFF picture to PNG",
			Description: "",
			ArgsUsage:   "FILE [OUTPUT]",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "paletted",
					Usage: "quantize truecolor output to a 256 color palette",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				src := c.Args().First()
				dst := c.Args().Get(1)
				if dst == "" {
					dst = pngTarget(src)
				}

				m := iffpicture.New(nil, newLogger(c))
				defer m.Close()

				if err := m.Convert(src, dst, c.Bool("paletted")); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "info",
			Usage:       "Show details of an IFF picture",
			Description: "",
			ArgsUsage:   "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				if err := printInfo(c.Args().First()); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "scan",
			Usage:       "Scan filesystem and catalog IFF pictures",
			Description: "",
			ArgsUsage:   "DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				db, err := iffpicture.NewPictureDB(c.String("db"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				m := iffpicture.New(db, newLogger(c))
				defer m.Close()

				if err := m.Scan(c.Args().First()); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
