package compiler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"cn1css/render"
	"cn1css/state"
)

// Run is the compile command action.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("compile")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input stylesheet has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}
	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		dst = DefaultOutput(src)
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Mailformed command line, too many arguments", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.Watch, env.Force, env.DumpXML = cmd.Bool("watch"), cmd.Bool("force"), cmd.Bool("xml")

	svc, closeSvc, err := openRenderer(env)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, closeSvc())
	}()

	// debug report gets final state of both files
	env.Rpt.Store(fmt.Sprintf("input/%s", filepath.Base(src)), src)
	env.Rpt.Store(fmt.Sprintf("output/%s", filepath.Base(dst)), dst)

	c := New(env.Cfg, svc, Options{Force: env.Force, XML: env.DumpXML, Report: env.Rpt}, env.Log)
	if env.Watch {
		return c.Watch(ctx, src, dst)
	}
	_, err = c.Compile(ctx, src, dst)
	return err
}

// openRenderer returns in process render service wrapped with snapshot
// cache when one is configured.
func openRenderer(env *state.LocalEnv) (render.Service, func() error, error) {
	local := render.NewLocal(env.Cfg.Compiler.ReferenceWidth, env.Cfg.Compiler.ReferenceHeight, env.Log)
	if env.Cfg.Render.CacheDB == "" {
		return local, func() error { return nil }, nil
	}
	cached, err := render.OpenCache(env.Cfg.Render.CacheDB, local, env.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open render cache: %w", err)
	}
	return cached, cached.Close, nil
}
