package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Version is set at build time via -ldflags
var Version = "dev"

// Runner is the part of App that main drives
type Runner interface {
	ApplyOptions(opts AppOptions)
	Run() error
}

// optionFlags collects repeated -set key=value flags
type optionFlags map[string]string

func (o optionFlags) String() string {
	parts := make([]string, 0, len(o))
	for k, v := range o {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

func (o optionFlags) Set(value string) error {
	key, val, ok := strings.Cut(value, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return fmt.Errorf("expected key=value, got %q", value)
	}
	o[strings.TrimSpace(key)] = val
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout, NewApp()); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		log.Fatalf("Error: %v", err)
	}
}

func run(args []string, out io.Writer, app Runner) error {
	fs := flag.NewFlagSet("lcselect", flag.ContinueOnError)
	fs.SetOutput(out)

	configFile := fs.String("config", "", "Path to selection config (.yaml, .toml or .hcl); defaults apply when empty")
	scenarioFile := fs.String("scenario", "scenario.json", "Path to the scenario JSON (pose graph and candidates)")
	outputFile := fs.String("output", "selection-report.json", "Where to write the selection report (empty to skip)")
	renderFile := fs.String("render", "", "Write kept and removed candidates as .svg, .png or .geojson")
	saveConfig := fs.String("save-config", "", "Write the effective config as YAML and exit")
	mqttMode := fs.Bool("mqtt", false, "Publish the report to MQTT")
	mqttBroker := fs.String("mqtt-broker", "", "MQTT broker URL (default: $MQTT_BROKER)")
	httpMode := fs.Bool("http", false, "Serve the report over HTTP until interrupted")
	httpPort := fs.Int("http-port", 8080, "HTTP server port")
	verbose := fs.Bool("verbose", false, "Log every rejected candidate")
	overrides := optionFlags{}
	fs.Var(overrides, "set", "Override a selection option, e.g. -set max_number_of_candidates=50 (repeatable)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Fprintf(out, "lcselect version: %s\n", Version)

	app.ApplyOptions(AppOptions{
		ConfigFile:   *configFile,
		Overrides:    overrides,
		ScenarioFile: *scenarioFile,
		OutputFile:   *outputFile,
		RenderFile:   *renderFile,
		SaveConfig:   *saveConfig,
		MqttMode:     *mqttMode,
		MqttBroker:   *mqttBroker,
		HttpMode:     *httpMode,
		HttpPort:     *httpPort,
		Verbose:      *verbose,
	})

	return app.Run()
}
