package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/kwv/lcselect/selection"
)

// AppOptions are the CLI options the App depends on
type AppOptions struct {
	ConfigFile   string
	Overrides    map[string]string
	ScenarioFile string
	OutputFile   string
	RenderFile   string
	SaveConfig   string
	MqttMode     bool
	MqttBroker   string
	HttpMode     bool
	HttpPort     int
	Verbose      bool
}

// App encapsulates the application state and dependencies
type App struct {
	Config    selection.Config
	Scenario  *selection.Scenario
	Graph     *selection.PoseGraph
	Report    selection.Report
	Renderer  *selection.CandidateRenderer
	Publisher *selection.ReportPublisher
	state     *reportState

	// CLI Flags (effectively dependencies)
	ConfigFile   string
	Overrides    map[string]string
	ScenarioFile string
	OutputFile   string
	RenderFile   string
	SaveConfig   string
	MqttMode     bool
	MqttBroker   string
	HttpMode     bool
	HttpPort     int
	Verbose      bool
}

// NewApp creates a new App instance
func NewApp() *App {
	return &App{
		Config: selection.DefaultConfig(),
		state:  &reportState{},
	}
}

// ApplyOptions applies CLI options to the App instance
func (a *App) ApplyOptions(opts AppOptions) {
	a.ConfigFile = opts.ConfigFile
	a.Overrides = opts.Overrides
	a.ScenarioFile = opts.ScenarioFile
	a.OutputFile = opts.OutputFile
	a.RenderFile = opts.RenderFile
	a.SaveConfig = opts.SaveConfig
	a.MqttMode = opts.MqttMode
	a.MqttBroker = opts.MqttBroker
	a.HttpMode = opts.HttpMode
	a.HttpPort = opts.HttpPort
	a.Verbose = opts.Verbose
}

// LoadConfig resolves the effective selection config: defaults, then the
// config file if one was given, then -set overrides, then -verbose
func (a *App) LoadConfig() error {
	cfg := selection.DefaultConfig()
	if a.ConfigFile != "" {
		loaded, err := selection.LoadConfig(a.ConfigFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
		log.Printf("Loaded config from %s", a.ConfigFile)
	}

	if err := cfg.ApplyOptions(a.Overrides); err != nil {
		return fmt.Errorf("applying overrides: %w", err)
	}
	if a.Verbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.FilterStrategy == selection.StrategyUnknown && cfg.MaxNumberOfCandidates >= 0 {
		log.Printf("Warning: unknown filter strategy %q, candidates will not be capped", cfg.StrategyName())
	}

	a.Config = cfg
	return nil
}

// RunSaveConfig writes the effective config as YAML
func (a *App) RunSaveConfig() error {
	if err := selection.SaveConfig(a.SaveConfig, a.Config); err != nil {
		return err
	}
	fmt.Printf("Config written to %s\n", a.SaveConfig)
	return nil
}

// RunSelection loads the scenario, selects candidates and writes the
// report and optional plot
func (a *App) RunSelection() error {
	scenario, err := selection.ParseScenarioFile(a.ScenarioFile)
	if err != nil {
		return fmt.Errorf("loading scenario %s: %w", a.ScenarioFile, err)
	}
	graph, err := scenario.PoseGraph()
	if err != nil {
		return err
	}
	a.Scenario = scenario
	a.Graph = graph
	log.Printf("Loaded scenario %s: %d vertices, %d edges, %d candidates",
		a.ScenarioFile, graph.NumVertices(), graph.NumEdges(), scenario.Candidates.Len())

	candidates := scenario.Candidates.Clone()
	a.Report = selection.SelectWithReport(a.Config, graph, &candidates)
	a.Renderer = selection.NewCandidateRenderer(graph, scenario.Candidates, candidates)
	a.state.Set(a.Report, a.Renderer)

	if a.OutputFile != "" {
		if err := selection.WriteReport(a.OutputFile, a.Report); err != nil {
			return err
		}
		log.Printf("Report written to %s", a.OutputFile)
	}

	if a.RenderFile != "" {
		if err := a.writeRender(a.RenderFile); err != nil {
			return err
		}
		log.Printf("Candidate plot written to %s", a.RenderFile)
	}

	a.printSummary()
	return nil
}

func (a *App) writeRender(path string) (err error) {
	var render func(io.Writer) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		render = a.Renderer.RenderToPNG
	case ".svg":
		render = a.Renderer.RenderToSVG
	case ".geojson", ".json":
		render = a.Renderer.RenderToGeoJSON
	default:
		return fmt.Errorf("unsupported render format %q (use .svg, .png or .geojson)", filepath.Ext(path))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	if err := render(f); err != nil {
		return fmt.Errorf("rendering %s: %w", path, err)
	}
	return nil
}

func (a *App) printSummary() {
	s := a.Report.Summary()
	fmt.Println("\nSelection")
	fmt.Println("=========")
	fmt.Printf("  Candidates in:        %d\n", s.Before)
	fmt.Printf("  Invalid:              %d\n", s.Invalid)
	fmt.Printf("  Good prior edges:     %d\n", s.GoodPriorEdges)
	fmt.Printf("  Removed prior edges:  %d\n", s.RemovedEdges)
	if a.Report.Strategy.Skipped {
		fmt.Printf("  Strategy:             %s (skipped)\n", s.Strategy)
	} else {
		fmt.Printf("  Strategy:             %s (max %d)\n", s.Strategy, a.Config.MaxNumberOfCandidates)
	}
	fmt.Printf("  Selected:             %d\n", s.Selected)
}

// PublishReport publishes the current report through client
func (a *App) PublishReport(client mqtt.Client) error {
	a.Publisher = selection.NewReportPublisher(client)
	return a.Publisher.Publish(a.Report)
}

// RunPublish connects to the broker and publishes the current report
func (a *App) RunPublish() error {
	opts := selection.MQTTOptionsFromEnv(selection.MQTTOptions{Broker: a.MqttBroker})
	client, err := selection.ConnectMQTT(opts)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	return a.PublishReport(client)
}

// RunServer serves the current report over HTTP until interrupted
func (a *App) RunServer() {
	handler := newHTTPServer(a.state)
	go func() {
		addr := fmt.Sprintf("0.0.0.0:%d", a.HttpPort)
		log.Printf("[HTTP] Starting server on %s", addr)
		if err := http.ListenAndServe(addr, handler); err != nil {
			log.Fatalf("[HTTP] Server error: %v", err)
		}
	}()

	fmt.Printf("\nHTTP endpoints (port %d):\n", a.HttpPort)
	fmt.Println("  GET /health          - Health check")
	fmt.Println("  GET /report          - Full selection report (JSON)")
	fmt.Println("  GET /summary         - Selection summary (JSON)")
	fmt.Println("  GET /candidates.svg  - Kept and removed candidates")
	fmt.Println("  GET /candidates.png  - Kept and removed candidates")
	fmt.Println("  GET /candidates.geojson")
	fmt.Println("\nPress Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	fmt.Println("\nServer stopped")
}

// Run executes the configured modes in order
func (a *App) Run() error {
	if err := a.LoadConfig(); err != nil {
		return err
	}
	if a.SaveConfig != "" {
		return a.RunSaveConfig()
	}
	if err := a.RunSelection(); err != nil {
		return err
	}
	if a.MqttMode {
		if err := a.RunPublish(); err != nil {
			return fmt.Errorf("publishing report: %w", err)
		}
	}
	if a.HttpMode {
		a.RunServer()
	}
	return nil
}
