package main

import (
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/hesusruiz/adoc/adoc"
	"github.com/hesusruiz/vcutils/yaml"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var debug = false

// outputExtensions maps the output format to the file extension used
// when no explicit output file name is given.
var outputExtensions = map[string]string{
	"html": ".html",
	"adoc": ".out.adoc",
	"dump": ".tree.txt",
}

// buildParseOptions assembles the parse options from the command line:
// every '-a name=value' seeds an attribute, and '-A name=value'
// additionally locks it against in-document redefinition.
func buildParseOptions(c *cli.Context, inputFileName string) adoc.ParseOptions {
	attributes := map[string]string{}
	var locked []string

	for _, spec := range c.StringSlice("attribute") {
		name, value, _ := strings.Cut(spec, "=")
		attributes[name] = value
	}
	for _, spec := range c.StringSlice("locked-attribute") {
		name, value, _ := strings.Cut(spec, "=")
		attributes[name] = value
		locked = append(locked, name)
	}

	return adoc.ParseOptions{
		FileName:         inputFileName,
		BaseDir:          path.Dir(inputFileName),
		Attributes:       attributes,
		LockedAttributes: locked,
		HeaderAttributes: true,
	}
}

// render converts a parsed document to the requested output format.
func render(doc *adoc.Document, format string, config *yaml.YAML) ([]byte, error) {
	switch format {
	case "adoc":
		return adoc.RenderAdoc(doc), nil
	case "dump":
		return []byte(doc.Root.Dump()), nil
	case "html":
		return adoc.NewHTMLRenderer(config).RenderHTML(doc)
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

// processOnce parses the input file and writes the rendered output,
// reporting every parse diagnostic through the logger.
func processOnce(c *cli.Context, inputFileName, outputFileName string, config *yaml.YAML, sugar *zap.SugaredLogger) error {

	doc, err := adoc.ParseFromFile(inputFileName, buildParseOptions(c, inputFileName))
	if err != nil {
		return err
	}

	for _, diag := range doc.Diags {
		sugar.Warnw("parse diagnostic", "msg", diag.Error())
	}
	if debug {
		sugar.Debugw("parsed", "file", inputFileName, "blocks", len(doc.Blocks()), "diags", len(doc.Diags))
	}

	out, err := render(doc, c.String("format"), config)
	if err != nil {
		return err
	}

	if c.Bool("dryrun") {
		return nil
	}
	return os.WriteFile(outputFileName, out, 0664)
}

// processWatch checks periodically if the input file has been modified,
// and if so processes it again and rewrites the output file.
func processWatch(c *cli.Context, inputFileName, outputFileName string, config *yaml.YAML, sugar *zap.SugaredLogger) error {

	var old_timestamp time.Time

	// Loop forever
	for {

		info, err := os.Stat(inputFileName)
		if err != nil {
			return err
		}
		current_timestamp := info.ModTime()

		if old_timestamp.Before(current_timestamp) {
			old_timestamp = current_timestamp
			fmt.Println("************Processing*************")
			if err := processOnce(c, inputFileName, outputFileName, config, sugar); err != nil {
				return err
			}
		}

		// Check again in one second
		time.Sleep(1 * time.Second)

	}
}

// process is the main entry point of the program
func process(c *cli.Context) error {

	// Default input file name
	var inputFileName = "index.adoc"

	// Output file name command line parameter
	outputFileName := c.String("output")

	debug = c.Bool("debug")

	var z *zap.Logger
	var err error

	// Setup the logging system
	if debug {
		z, err = zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
	} else {
		z, err = zap.NewProduction()
		if err != nil {
			panic(err)
		}
	}

	sugar := z.Sugar()
	defer sugar.Sync()

	// Get the input file name
	if c.Args().Present() {
		inputFileName = c.Args().First()
	} else {
		fmt.Printf("no input file provided, using \"%v\"\n", inputFileName)
	}

	format := c.String("format")
	if _, ok := outputExtensions[format]; !ok {
		return fmt.Errorf("unknown output format %q", format)
	}

	// Generate the output file name
	if len(outputFileName) == 0 {
		ext := path.Ext(inputFileName)
		if len(ext) == 0 {
			outputFileName = inputFileName + outputExtensions[format]
		} else {
			outputFileName = strings.Replace(inputFileName, ext, outputExtensions[format], 1)
		}
	}

	// Load the rendering configuration, if any
	var config *yaml.YAML
	if configFileName := c.String("config"); len(configFileName) > 0 {
		config, err = yaml.ParseYamlFile(configFileName)
		if err != nil {
			return err
		}
	} else {
		config, _ = yaml.ParseYaml("")
	}

	// Print a message
	if !c.Bool("dryrun") {
		fmt.Printf("processing %v and generating %v\n", inputFileName, outputFileName)
	} else {
		fmt.Printf("dry run: processing %v without writing output\n", inputFileName)
	}

	// This is useful for development.
	// If the user specified to watch, loop forever processing the input file when modified
	if c.Bool("watch") {
		return processWatch(c, inputFileName, outputFileName, config, sugar)
	}

	return processOnce(c, inputFileName, outputFileName, config, sugar)
}

func main() {

	app := &cli.App{
		Name:     "adoc",
		Version:  "v0.1",
		Compiled: time.Now(),
		Authors: []*cli.Author{
			{
				Name:  "Jesus Ruiz",
				Email: "hesus.ruiz@gmail.com",
			},
		},
		Usage:     "parse an AsciiDoc document and produce HTML, canonical source or a tree dump",
		UsageText: "adoc [options] [INPUT_FILE] (default input file is index.adoc)",
		Action:    process,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "write output to `FILE` (default is input file name with the format's extension)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "html",
				Usage:   "output format: html, adoc or dump",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "read rendering options from the YAML `FILE`",
			},
			&cli.StringSliceFlag{
				Name:    "attribute",
				Aliases: []string{"a"},
				Usage:   "seed the attribute `NAME=VALUE` before parsing (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:    "locked-attribute",
				Aliases: []string{"A"},
				Usage:   "like --attribute, but the document cannot redefine it",
			},
			&cli.BoolFlag{
				Name:    "dryrun",
				Aliases: []string{"n"},
				Usage:   "do not generate output file, just process input file",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "run in debug mode",
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "watch the file for changes",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		panic(err)
	}

}
