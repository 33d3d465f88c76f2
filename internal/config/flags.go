package config

import (
	"flag"
)

// Flags holds command-line overrides. Only flags the user actually set are
// applied, so defaults never mask file or environment values.
type Flags struct {
	fs *flag.FlagSet

	ConfigPath string
	transport  string
	host       string
	port       int
	serial     string
	stream     string
	source     string
	model      string
	dashboard  string
	journal    string
	debug      bool
	dryRun     bool
}

// NewFlags registers wastebot flags on fs.
func NewFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	d := DefaultConfig()
	fs.StringVar(&f.ConfigPath, "config", "", "Path to a JSON config file")
	fs.StringVar(&f.transport, "transport", d.Actuator.Transport, "Actuator transport: tcp or serial")
	fs.StringVar(&f.host, "actuator-host", d.Actuator.Host, "Actuator controller host")
	fs.IntVar(&f.port, "actuator-port", d.Actuator.Port, "Actuator controller TCP port")
	fs.StringVar(&f.serial, "serial", "", "Actuator serial device (serial transport)")
	fs.StringVar(&f.stream, "stream", d.Stream.URL, "Video stream URL, file or device index")
	fs.StringVar(&f.source, "source", d.Stream.Backend, "Video backend: gocv or mjpeg")
	fs.StringVar(&f.model, "model", d.Detector.ModelPath, "Path to the YOLO ONNX model")
	fs.StringVar(&f.dashboard, "dashboard", d.Dashboard.Port, "Dashboard port (empty disables)")
	fs.StringVar(&f.journal, "journal", d.Journal.Path, "Dispatch journal SQLite path (empty disables)")
	fs.BoolVar(&f.debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&f.dryRun, "dry-run", false, "Log commands instead of sending them")
	return f
}

// Apply copies explicitly set flags onto c.
func (f *Flags) Apply(c *Config) {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "transport":
			c.Actuator.Transport = f.transport
		case "actuator-host":
			c.Actuator.Host = f.host
		case "actuator-port":
			c.Actuator.Port = f.port
		case "serial":
			c.Actuator.SerialPort = f.serial
		case "stream":
			c.Stream.URL = f.stream
		case "source":
			c.Stream.Backend = f.source
		case "model":
			c.Detector.ModelPath = f.model
		case "dashboard":
			c.Dashboard.Port = f.dashboard
		case "journal":
			c.Journal.Path = f.journal
		case "debug":
			if f.debug {
				c.LogLevel = "debug"
			}
		case "dry-run":
			c.DryRun = f.dryRun
		}
	})
}
