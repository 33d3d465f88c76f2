// Package config loads wastebot configuration from defaults, an optional
// JSON file, the environment and command-line flags, in that order.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/teslashibe/go-wastesort/pkg/command"
	"github.com/teslashibe/go-wastesort/pkg/detection"
	"github.com/teslashibe/go-wastesort/pkg/loop"
	"github.com/teslashibe/go-wastesort/pkg/sorting"
	"github.com/teslashibe/go-wastesort/pkg/waste"
)

// Transport names.
const (
	TransportTCP    = "tcp"
	TransportSerial = "serial"
)

// Video backend names. These match the camera package.
const (
	BackendGoCV  = "gocv"
	BackendMJPEG = "mjpeg"
)

// DefaultStreamURL is the ESP32-CAM MJPEG endpoint.
const DefaultStreamURL = "http://192.168.43.165:81/stream"

// maxFileSize caps config files at 1MB.
const maxFileSize = 1 * 1024 * 1024

// Duration is a time.Duration encoded in JSON as a string such as "2s".
type Duration struct {
	time.Duration
}

// UnmarshalJSON parses a duration string.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"2s\": %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalJSON encodes d as a duration string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Actuator configures the command channel.
type Actuator struct {
	Transport   string   `json:"transport"`
	Host        string   `json:"host"`
	Port        int      `json:"port"`
	SerialPort  string   `json:"serial_port"`
	BaudRate    int      `json:"baud_rate"`
	SendTimeout Duration `json:"send_timeout"`
	SettleDelay Duration `json:"settle_delay"`
}

// Stream configures the video source.
type Stream struct {
	URL            string   `json:"url"`
	Backend        string   `json:"backend"`
	ConnectTimeout Duration `json:"connect_timeout"`
	ReconnectPause Duration `json:"reconnect_pause"`
}

// Frame configures frame processing.
type Frame struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	Skip   int `json:"skip"`
}

// Sorting configures steering and the dispatch sequence.
type Sorting struct {
	StopThreshold     float64  `json:"stop_threshold"`
	SteeringDeadband  int      `json:"steering_deadband"`
	DebounceWindow    Duration `json:"debounce_window"`
	SortingDelay      Duration `json:"sorting_delay"`
	Recyclable        []string `json:"recyclable"`
	RecyclableBelt    string   `json:"recyclable_belt"`
	NonRecyclableBelt string   `json:"non_recyclable_belt"`
}

// Detector configures the object detection model.
type Detector struct {
	ModelPath  string  `json:"model_path"`
	LabelsPath string  `json:"labels_path"`
	Confidence float64 `json:"confidence"`
	NMS        float64 `json:"nms"`
	InputSize  int     `json:"input_size"`
}

// Dashboard configures the monitoring server. An empty port disables it.
type Dashboard struct {
	Port string `json:"port"`
}

// Journal configures the dispatch journal. An empty path disables it.
type Journal struct {
	Path string `json:"path"`
}

// Config holds all wastebot settings.
type Config struct {
	Actuator  Actuator  `json:"actuator"`
	Stream    Stream    `json:"stream"`
	Frame     Frame     `json:"frame"`
	Sorting   Sorting   `json:"sorting"`
	Detector  Detector  `json:"detector"`
	Dashboard Dashboard `json:"dashboard"`
	Journal   Journal   `json:"journal"`
	LogLevel  string    `json:"log_level"`
	DryRun    bool      `json:"dry_run"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	lc := loop.DefaultConfig()
	sc := sorting.DefaultConfig()
	dc := detection.DefaultConfig()
	return Config{
		Actuator: Actuator{
			Transport:   TransportTCP,
			Host:        command.DefaultHost,
			Port:        command.DefaultPort,
			BaudRate:    command.DefaultBaudRate,
			SendTimeout: Duration{command.DefaultTimeout},
			SettleDelay: Duration{command.DefaultSettleDelay},
		},
		Stream: Stream{
			URL:            DefaultStreamURL,
			Backend:        BackendGoCV,
			ConnectTimeout: Duration{10 * time.Second},
			ReconnectPause: Duration{lc.ReconnectPause},
		},
		Frame: Frame{
			Width:  lc.FrameWidth,
			Height: lc.FrameHeight,
			Skip:   lc.FrameSkip,
		},
		Sorting: Sorting{
			StopThreshold:     sc.StopThreshold,
			SteeringDeadband:  lc.Deadband,
			DebounceWindow:    Duration{sc.DebounceWindow},
			SortingDelay:      Duration{sc.SortingDelay},
			Recyclable:        waste.DefaultRecyclable(),
			RecyclableBelt:    string(waste.RecyclableBelt),
			NonRecyclableBelt: string(waste.NonRecyclableBelt),
		},
		Detector: Detector{
			ModelPath:  dc.ModelPath,
			LabelsPath: dc.LabelsPath,
			Confidence: dc.ConfidenceThresh,
			NMS:        dc.NMSThresh,
			InputSize:  dc.InputSize,
		},
		Dashboard: Dashboard{Port: "8181"},
		Journal:   Journal{Path: "wastebot.db"},
		LogLevel:  "info",
	}
}

// Load returns defaults overlaid with the JSON file at path (if non-empty)
// and then the environment. The result is not validated.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return cfg, err
		}
	}
	if err := cfg.LoadEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFile overlays the JSON file at path onto c. Fields omitted from the
// file keep their current values, so partial configs are safe.
func (c *Config) LoadFile(path string) error {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return nil
}

// LoadEnv applies environment overrides.
func (c *Config) LoadEnv() error {
	if v := os.Getenv("ACTUATOR_TRANSPORT"); v != "" {
		c.Actuator.Transport = v
	}
	if v := os.Getenv("ACTUATOR_HOST"); v != "" {
		c.Actuator.Host = v
	}
	if v := os.Getenv("ACTUATOR_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return &ConfigError{Field: "Actuator.Port", Message: fmt.Sprintf("ACTUATOR_PORT must be a number, got %q", v)}
		}
		c.Actuator.Port = port
	}
	if v := os.Getenv("ACTUATOR_SERIAL"); v != "" {
		c.Actuator.SerialPort = v
	}
	if v := os.Getenv("STREAM_URL"); v != "" {
		c.Stream.URL = v
	}
	if v := os.Getenv("MODEL_PATH"); v != "" {
		c.Detector.ModelPath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks the configuration for values the robot cannot run with.
func (c *Config) Validate() error {
	switch c.Actuator.Transport {
	case TransportTCP:
		if c.Actuator.Host == "" {
			return &ConfigError{Field: "Actuator.Host", Message: "actuator host is required for tcp transport"}
		}
		if c.Actuator.Port <= 0 || c.Actuator.Port > 65535 {
			return &ConfigError{Field: "Actuator.Port", Message: fmt.Sprintf("actuator port out of range: %d", c.Actuator.Port)}
		}
	case TransportSerial:
		if c.Actuator.SerialPort == "" {
			return &ConfigError{Field: "Actuator.SerialPort", Message: "serial device is required for serial transport"}
		}
	default:
		return &ConfigError{Field: "Actuator.Transport", Message: fmt.Sprintf("unknown transport %q (want tcp or serial)", c.Actuator.Transport)}
	}

	switch c.Stream.Backend {
	case BackendGoCV, BackendMJPEG:
	default:
		return &ConfigError{Field: "Stream.Backend", Message: fmt.Sprintf("unknown stream backend %q (want gocv or mjpeg)", c.Stream.Backend)}
	}
	if c.Stream.URL == "" {
		return &ConfigError{Field: "Stream.URL", Message: "stream URL is required"}
	}

	if c.Frame.Width <= 0 || c.Frame.Height <= 0 {
		return &ConfigError{Field: "Frame", Message: fmt.Sprintf("frame size must be positive, got %dx%d", c.Frame.Width, c.Frame.Height)}
	}
	if c.Frame.Skip < 1 {
		return &ConfigError{Field: "Frame.Skip", Message: fmt.Sprintf("frame skip must be at least 1, got %d", c.Frame.Skip)}
	}

	if c.Sorting.StopThreshold <= 0 {
		return &ConfigError{Field: "Sorting.StopThreshold", Message: "stop threshold must be positive"}
	}
	if c.Sorting.SteeringDeadband < 0 {
		return &ConfigError{Field: "Sorting.SteeringDeadband", Message: "steering deadband must not be negative"}
	}

	durations := []struct {
		field string
		d     Duration
	}{
		{"Actuator.SendTimeout", c.Actuator.SendTimeout},
		{"Actuator.SettleDelay", c.Actuator.SettleDelay},
		{"Stream.ConnectTimeout", c.Stream.ConnectTimeout},
		{"Stream.ReconnectPause", c.Stream.ReconnectPause},
		{"Sorting.DebounceWindow", c.Sorting.DebounceWindow},
		{"Sorting.SortingDelay", c.Sorting.SortingDelay},
	}
	for _, d := range durations {
		if d.d.Duration < 0 {
			return &ConfigError{Field: d.field, Message: fmt.Sprintf("%s must not be negative, got %v", d.field, d.d.Duration)}
		}
	}

	if c.Detector.Confidence <= 0 || c.Detector.Confidence > 1 {
		return &ConfigError{Field: "Detector.Confidence", Message: fmt.Sprintf("confidence must be in (0,1], got %v", c.Detector.Confidence)}
	}
	if c.Detector.ModelPath == "" {
		return &ConfigError{Field: "Detector.ModelPath", Message: "model path is required"}
	}
	return nil
}

// TCPConfig returns the TCP channel settings.
func (c *Config) TCPConfig() command.TCPConfig {
	return command.TCPConfig{
		Host:        c.Actuator.Host,
		Port:        c.Actuator.Port,
		Timeout:     c.Actuator.SendTimeout.Duration,
		SettleDelay: c.Actuator.SettleDelay.Duration,
	}
}

// SerialConfig returns the serial channel settings.
func (c *Config) SerialConfig() command.SerialConfig {
	return command.SerialConfig{
		Device:      c.Actuator.SerialPort,
		BaudRate:    c.Actuator.BaudRate,
		SettleDelay: c.Actuator.SettleDelay.Duration,
	}
}

// LoopConfig returns the frame loop settings.
func (c *Config) LoopConfig() loop.Config {
	return loop.Config{
		FrameWidth:     c.Frame.Width,
		FrameHeight:    c.Frame.Height,
		FrameSkip:      c.Frame.Skip,
		Deadband:       c.Sorting.SteeringDeadband,
		ReconnectPause: c.Stream.ReconnectPause.Duration,
	}
}

// SortingConfig returns the sorting machine settings.
func (c *Config) SortingConfig() sorting.Config {
	return sorting.Config{
		StopThreshold:  c.Sorting.StopThreshold,
		DebounceWindow: c.Sorting.DebounceWindow.Duration,
		SortingDelay:   c.Sorting.SortingDelay.Duration,
	}
}

// DetectionConfig returns the detector settings.
func (c *Config) DetectionConfig() detection.Config {
	return detection.Config{
		ModelPath:        c.Detector.ModelPath,
		LabelsPath:       c.Detector.LabelsPath,
		ConfidenceThresh: c.Detector.Confidence,
		NMSThresh:        c.Detector.NMS,
		InputSize:        c.Detector.InputSize,
	}
}

// Policy builds the waste policy.
func (c *Config) Policy() *waste.Policy {
	return waste.NewPolicy(c.Sorting.Recyclable,
		command.Command(c.Sorting.RecyclableBelt),
		command.Command(c.Sorting.NonRecyclableBelt))
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}
