package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/doclens/regionfit/internal/config"
	"github.com/doclens/regionfit/internal/mcp"
	"github.com/doclens/regionfit/internal/refine"
	"github.com/doclens/regionfit/internal/service"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging configures logging based on the execution mode
func setupLogging(cfg *config.Config) {
	if cfg.IsStdioMode() {
		// In stdio mode, redirect log output to stderr to avoid interfering with MCP protocol
		log.SetOutput(os.Stderr)
		// Reduce log verbosity in stdio mode unless debug is enabled
		if !cfg.IsDebug() {
			log.SetOutput(os.NewFile(0, os.DevNull))
		}
	} else {
		// In run mode, results go to stdout, so logs go to stderr
		log.SetOutput(os.Stderr)
		log.SetFlags(log.LstdFlags)
	}
}

// newService builds the region service with pipeline tunables from the config
func newService(cfg *config.Config) (*service.Service, error) {
	pipelineCfg := refine.DefaultConfig()
	pipelineCfg.MinRegionGap = cfg.MinRegionGap
	pipelineCfg.SnapMaxPasses = cfg.SnapPasses
	pipeline := refine.NewPipelineWithConfig(pipelineCfg)
	return service.NewServiceWithPipeline(cfg.PDFDirectory, cfg.MaxFileSize, pipeline)
}

// runStdioMode handles stdio MCP server execution
func runStdioMode(ctx context.Context, server *mcp.Server) {
	// In stdio mode, the parent process controls our lifecycle
	// We should exit cleanly when stdin is closed or we get an error
	if err := server.Run(ctx); err != nil {
		// Only log to stderr in debug mode to avoid protocol interference
		if os.Getenv("DEBUG") != "" {
			log.Printf("Server error: %v", err)
		}
		os.Exit(1)
	}
}

// runOnce performs a one-shot correction and writes the result JSON to stdout
func runOnce(cfg *config.Config, svc *service.Service) error {
	data, err := os.ReadFile(cfg.RegionsFile)
	if err != nil {
		return fmt.Errorf("failed to read regions file: %w", err)
	}
	var regions []refine.Region
	if err := json.Unmarshal(data, &regions); err != nil {
		return fmt.Errorf("invalid regions JSON in %s: %w", cfg.RegionsFile, err)
	}

	req := service.RegionCorrectFileRequest{
		Path:    cfg.InputPDF,
		Page:    cfg.InputPage,
		Regions: regions,
		Trace:   cfg.TraceFile != "",
	}
	result, err := svc.RegionCorrectFile(req)
	if err != nil {
		return err
	}

	if cfg.TraceFile != "" {
		traceJSON, err := json.MarshalIndent(result.Trace, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode trace: %w", err)
		}
		if err := os.WriteFile(cfg.TraceFile, traceJSON, 0o644); err != nil {
			return fmt.Errorf("failed to write trace file: %w", err)
		}
		result.Trace = nil
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	// Load configuration from flags first
	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging based on mode
	setupLogging(cfg)

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	// Create region correction service
	svc, err := newService(cfg)
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}

	if cfg.IsRunMode() {
		if err := runOnce(cfg, svc); err != nil {
			log.Fatalf("Correction failed: %v", err)
		}
		return
	}

	// Create MCP server
	server, err := mcp.NewServer(cfg, svc)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runStdioMode(ctx, server)
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("regionfit\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
