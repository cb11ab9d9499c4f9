// SPDX-License-Identifier: MPL-2.0

package synth

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"

	"github.com/backapirest/samsynth/internal/artifact"
	"github.com/backapirest/samsynth/internal/bundler"
	"github.com/backapirest/samsynth/internal/capability"
	"github.com/backapirest/samsynth/internal/config"
	"github.com/backapirest/samsynth/internal/endpoint"
	"github.com/backapirest/samsynth/internal/environment"
	"github.com/backapirest/samsynth/internal/route"
	"github.com/backapirest/samsynth/internal/template"
	"github.com/backapirest/samsynth/internal/walker"

	"github.com/charmbracelet/log"
)

type (
	// Options are the inputs of a run.
	Options struct {
		// BaseDir is the project directory. Roots, controller directories and
		// outputs are relative to it.
		BaseDir string
		Config  *config.Config
		// Environ is the ambient environment, as returned by os.Environ.
		Environ []string
		// BuildFlags come from tsconfig.json.
		BuildFlags config.BuildFlags
		Logger     *log.Logger
	}

	// Result describes a finished generation.
	Result struct {
		// Files holds the template first, then the bundler configuration.
		Files       []artifact.File
		Functions   int
		Routes      int
		EntryPoints int
		Diagnostics []walker.Diagnostic
	}

	// Generator produces artifacts from a project tree.
	Generator struct {
		opts   Options
		walker *walker.Walker
		source capability.Source
		logger *log.Logger
	}
)

// New validates opts and prepares a Generator.
func New(opts Options) (*Generator, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	w, err := walker.NewFromConfig(opts.Config, opts.BaseDir, logger)
	if err != nil {
		return nil, fmt.Errorf("configure walker: %w", err)
	}
	introspector, err := capability.NewIntrospectorFromConfig(opts.Config, opts.BaseDir, logger)
	if err != nil {
		return nil, fmt.Errorf("configure controller lookup: %w", err)
	}
	source, err := capability.NewSource(
		opts.Config.Capabilities.Mode,
		capability.NewDeclared(opts.Config.Capabilities.Declared),
		introspector,
	)
	if err != nil {
		return nil, err
	}

	return &Generator{opts: opts, walker: w, source: source, logger: logger}, nil
}

// Generate builds both artifacts in memory.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	cfg := g.opts.Config
	fn := cfg.Function

	walked, err := g.walker.Walk(ctx)
	if err != nil {
		return nil, fmt.Errorf("walk resource tree: %w", err)
	}

	em := template.NewEmitter()
	if err := em.Initialize(""); err != nil {
		return nil, err
	}
	if err := em.EmitGlobals(template.Globals{
		Timeout:    fn.Timeout,
		MemorySize: fn.MemorySize,
		Tracing:    fn.Tracing,
		APITracing: fn.APITracing,
	}); err != nil {
		return nil, err
	}
	if err := em.EmitResourcesHeader(); err != nil {
		return nil, err
	}

	var layers []string
	if fn.UseCommonLayer {
		if err := em.EmitLayer(template.Layer{
			LogicalID:          cfg.Layer.Name,
			ContentURI:         cfg.Layer.ContentURI,
			CompatibleRuntimes: []string{fn.Runtime},
			Architectures:      fn.Architectures,
			BuildMethod:        fn.Runtime,
		}); err != nil {
			return nil, err
		}
		layers = []string{cfg.Layer.Name}
	}

	env := g.projectEnvironment(cfg.Environment.Deny)

	result := &Result{Diagnostics: walked.Diagnostics}
	var agg bundler.Aggregator
	seen := make(map[string]string, len(walked.Dirs))

	for _, dir := range walked.Dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ep := endpoint.Resolve(dir.Segments, walked.APIRoot, dir.Primary())
		name := ep.FunctionName
		if prev, dup := seen[name]; dup {
			g.logger.Warn("function name repeated", "function", name, "dir", dir.Dir, "first", prev)
		} else {
			seen[name] = dir.Dir
		}

		if err := em.EmitFunction(template.FunctionSpec{
			Name:          name,
			CodeURI:       dir.Dir,
			Runtime:       fn.Runtime,
			Architectures: fn.Architectures,
			Environment:   env,
			Layers:        layers,
		}); err != nil {
			return nil, err
		}

		tokens, err := g.source.Capabilities(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("capabilities of %s: %w", name, err)
		}
		for _, m := range route.Map(name, ep.Route, tokens, cfg.Routes.Dedupe) {
			if err := em.EmitRouteEvent(name, template.Event{Name: m.EventName(), Path: m.Path, Method: m.Verb}); err != nil {
				return nil, err
			}
			g.logger.Debug("route", "function", name, "method", m.Verb, "path", m.Path)
			result.Routes++
		}

		entries := bundler.NewDirEntries(name)
		for _, file := range dir.Files {
			entries.Add(dir.Dir + "/" + file)
		}
		if entries.Len() > 1 || cfg.Metadata.Always {
			if err := em.EmitBuildMetadata(name, template.BuildMetadata{
				Minify:      fn.Minify,
				Target:      g.opts.BuildFlags.Target,
				Sourcemap:   g.opts.BuildFlags.SourceMap,
				EntryPoints: entries.Names(),
			}); err != nil {
				return nil, err
			}
		}
		agg.Collect(entries)
		result.Functions++
	}

	tpl, err := em.Render()
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}
	bundle, err := agg.Build(bundler.Options{
		OutDir:    cfg.Output.BundleDir,
		Runtime:   fn.Runtime,
		Minify:    fn.Minify,
		Sourcemap: g.opts.BuildFlags.SourceMap,
	}).Render()
	if err != nil {
		return nil, err
	}

	result.EntryPoints = len(agg.Entries())
	result.Files = []artifact.File{
		{Path: outputPath(cfg.Output.Template), Content: tpl},
		{Path: outputPath(cfg.Output.Bundler), Content: bundle},
	}
	return result, nil
}

// Run generates and writes both artifacts through sink. Nothing is written
// when generation fails.
func (g *Generator) Run(ctx context.Context, sink artifact.Sink) (*Result, error) {
	result, err := g.Generate(ctx)
	if err != nil {
		return nil, err
	}
	if err := sink.WriteAll(ctx, result.Files); err != nil {
		return nil, fmt.Errorf("write artifacts: %w", err)
	}
	return result, nil
}

// projectEnvironment drops denied variables and samsynth's own settings.
func (g *Generator) projectEnvironment(deny []string) []template.EnvVar {
	extra := append(append([]string(nil), deny...), config.SettingsEnvVars()...)
	vars := environment.Project(g.opts.Environ, extra)
	g.logger.Debug("projected environment", "vars", vars.Names())
	out := make([]template.EnvVar, len(vars))
	for i, v := range vars {
		out[i] = template.EnvVar{Name: v.Name, Value: v.Value}
	}
	return out
}

// outputPath normalizes a configured output to a clean slash path.
func outputPath(p string) string {
	return path.Clean(filepath.ToSlash(p))
}
