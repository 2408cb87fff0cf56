// Package config loads CanvasBoard settings: built-in defaults, then an
// optional TOML file, then environment variables, then command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultPort      = 8080
	DefaultFile      = "canvasboard.toml"
	DefaultUploadDir = "uploads"
)

type Config struct {
	Port           int      `toml:"port"`
	UploadDir      string   `toml:"upload_dir"`
	MaxUploadBytes int64    `toml:"max_upload_bytes"`
	AllowedOrigins []string `toml:"allowed_origins"`
	Advertise      bool     `toml:"advertise"`
	InstanceName   string   `toml:"instance_name"`
	Debug          bool     `toml:"debug"`

	// ServerURL is where the desktop client finds the API. Empty means
	// browse the LAN for an advertised server.
	ServerURL    string `toml:"server_url"`
	CanvasWidth  int    `toml:"canvas_width"`
	CanvasHeight int    `toml:"canvas_height"`
}

func Default() Config {
	return Config{
		Port:           DefaultPort,
		UploadDir:      DefaultUploadDir,
		MaxUploadBytes: 5 << 20,
		AllowedOrigins: []string{"http://localhost:5173"},
		Advertise:      true,
		CanvasWidth:    800,
		CanvasHeight:   600,
	}
}

// Load builds the configuration for args (without the program name).
// A missing config file is not an error unless it was named explicitly.
func Load(args []string) (Config, error) {
	cfg := Default()

	fset := flag.NewFlagSet("canvasboard", flag.ContinueOnError)
	file := fset.String("config", DefaultFile, "path to a TOML config file")
	port := fset.Int("port", 0, "HTTP listen port")
	uploadDir := fset.String("uploads", "", "directory for uploaded images")
	origins := fset.String("origins", "", "comma separated CORS origins")
	noMDNS := fset.Bool("no-mdns", false, "do not advertise the server on the LAN")
	debug := fset.Bool("debug", false, "verbose rasterizer logging")
	server := fset.String("server", "", "server URL for the desktop client")
	width := fset.Int("width", 0, "canvas width for a new client session")
	height := fset.Int("height", 0, "canvas height for a new client session")
	if err := fset.Parse(args); err != nil {
		return cfg, err
	}

	explicit := false
	fset.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicit = true
		}
	})
	if _, err := toml.DecodeFile(*file, &cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || explicit {
			return cfg, fmt.Errorf("read config %s: %w", *file, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}

	if *port != 0 {
		cfg.Port = *port
	}
	if *uploadDir != "" {
		cfg.UploadDir = *uploadDir
	}
	if *origins != "" {
		cfg.AllowedOrigins = splitList(*origins)
	}
	if *noMDNS {
		cfg.Advertise = false
	}
	if *debug {
		cfg.Debug = true
	}
	if *server != "" {
		cfg.ServerURL = *server
	}
	if *width != 0 {
		cfg.CanvasWidth = *width
	}
	if *height != 0 {
		cfg.CanvasHeight = *height
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PORT"); ok && v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Port = p
	}
	if v, ok := lookup("CANVASBOARD_UPLOAD_DIR"); ok && v != "" {
		c.UploadDir = v
	}
	if v, ok := lookup("CANVASBOARD_ALLOWED_ORIGINS"); ok && v != "" {
		c.AllowedOrigins = splitList(v)
	}
	if v, ok := lookup("CANVASBOARD_SERVER"); ok && v != "" {
		c.ServerURL = v
	}
	return nil
}

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.UploadDir == "" {
		return errors.New("upload dir must not be empty")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
