package main

import (
	"bytes"
	"errors"
	"flag"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockApp struct {
	opts   AppOptions
	ran    bool
	runErr error
}

func (m *mockApp) ApplyOptions(opts AppOptions) { m.opts = opts }
func (m *mockApp) Run() error                   { m.ran = true; return m.runErr }

func TestRun_Flags(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		verifyOpts func(*testing.T, AppOptions)
	}{
		{
			name: "Defaults",
			args: nil,
			verifyOpts: func(t *testing.T, opts AppOptions) {
				assert.Equal(t, "scenario.json", opts.ScenarioFile)
				assert.Equal(t, "selection-report.json", opts.OutputFile)
				assert.Equal(t, 8080, opts.HttpPort)
				assert.Empty(t, opts.Overrides)
				assert.False(t, opts.MqttMode)
				assert.False(t, opts.HttpMode)
			},
		},
		{
			name: "ConfigAndScenario",
			args: []string{"--config", "sel.toml", "--scenario", "run1.json", "--output", "out.json"},
			verifyOpts: func(t *testing.T, opts AppOptions) {
				assert.Equal(t, "sel.toml", opts.ConfigFile)
				assert.Equal(t, "run1.json", opts.ScenarioFile)
				assert.Equal(t, "out.json", opts.OutputFile)
			},
		},
		{
			name: "Overrides",
			args: []string{"-set", "max_number_of_candidates=5", "-set", "filter_strategy=distance", "-set", "random_seed=7"},
			verifyOpts: func(t *testing.T, opts AppOptions) {
				assert.Equal(t, map[string]string{
					"max_number_of_candidates": "5",
					"filter_strategy":          "distance",
					"random_seed":              "7",
				}, opts.Overrides)
			},
		},
		{
			name: "Render",
			args: []string{"--render", "plot.svg", "--verbose"},
			verifyOpts: func(t *testing.T, opts AppOptions) {
				assert.Equal(t, "plot.svg", opts.RenderFile)
				assert.True(t, opts.Verbose)
			},
		},
		{
			name: "Service",
			args: []string{"--mqtt", "--mqtt-broker", "tcp://localhost:1883", "--http", "--http-port", "9090"},
			verifyOpts: func(t *testing.T, opts AppOptions) {
				assert.True(t, opts.MqttMode)
				assert.Equal(t, "tcp://localhost:1883", opts.MqttBroker)
				assert.True(t, opts.HttpMode)
				assert.Equal(t, 9090, opts.HttpPort)
			},
		},
		{
			name: "SaveConfig",
			args: []string{"--save-config", "effective.yaml"},
			verifyOpts: func(t *testing.T, opts AppOptions) {
				assert.Equal(t, "effective.yaml", opts.SaveConfig)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := &mockApp{}
			var out bytes.Buffer
			require.NoError(t, run(tt.args, &out, app))

			assert.True(t, app.ran)
			tt.verifyOpts(t, app.opts)
		})
	}
}

func TestRun_BadOverride(t *testing.T) {
	app := &mockApp{}
	var out bytes.Buffer
	err := run([]string{"-set", "no-equals-sign"}, &out, app)

	assert.Error(t, err)
	assert.False(t, app.ran)
}

func TestRun_Help(t *testing.T) {
	app := &mockApp{}
	var out bytes.Buffer
	err := run([]string{"--help"}, &out, app)

	assert.True(t, errors.Is(err, flag.ErrHelp))
	assert.Contains(t, out.String(), "Usage of lcselect")
	assert.False(t, app.ran)
}

func TestRun_PropagatesAppError(t *testing.T) {
	app := &mockApp{runErr: errors.New("boom")}
	var out bytes.Buffer
	err := run(nil, &out, app)

	require.Error(t, err)
	assert.Equal(t, "boom", err.Error())
	assert.True(t, strings.HasPrefix(out.String(), "lcselect version: "+Version))
}

func TestOptionFlags(t *testing.T) {
	o := optionFlags{}
	require.NoError(t, o.Set("verbose=true"))
	require.NoError(t, o.Set(" min_distance_to_next_candidate =2.5"))
	require.NoError(t, o.Set("filter_strategy="))

	assert.Equal(t, "true", o["verbose"])
	assert.Equal(t, "2.5", o["min_distance_to_next_candidate"])
	assert.Equal(t, "", o["filter_strategy"])

	assert.Error(t, o.Set("=x"))
	assert.Error(t, o.Set("missing"))
}

func TestMain_Execute(t *testing.T) {
	// Smoke test to ensure version is set
	if Version == "" {
		t.Error("expected Version to be set")
	}
}
