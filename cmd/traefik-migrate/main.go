package main

import (
	"context"
	"fmt"

	"github.com/jxskiss/gopkg/v2/zlog"
	"github.com/jxskiss/mcli"
	"gopkg.in/yaml.v3"

	"github.com/jxskiss/traefik-migrate/pkg/migrate"
	"github.com/jxskiss/traefik-migrate/pkg/provider"
	"github.com/jxskiss/traefik-migrate/pkg/traefik"
)

func main() {
	zlog.SetDevelopment()
	defer zlog.Sync()

	app := mcli.NewApp()
	app.Add("migrate", runMigrate, "Generate IngressRoute and Middleware manifests")
	app.Add("plan", runPlan, "Print the resolved routes and the fallback plan")
	app.Add("middlewares", runMiddlewares, "Generate only the Middleware manifests")
	app.Run()
}

type commonArgs struct {
	Conf    string `cli:"-c, --conf, configuration file"`
	Input   string `cli:"-i, --input, read a captured ingress dump instead of calling kubectl"`
	WorkDir string `cli:"-w, --work-dir, directory to cache the kubectl dump" default:"./tmp"`
}

func newManager(args *commonArgs) (*migrate.Manager, error) {
	cfg, err := migrate.ReadConfig(args.Conf)
	if err != nil {
		return nil, err
	}
	var prov provider.Provider
	if args.Input != "" {
		prov = provider.NewFileProvider(args.Input)
	} else {
		prov = provider.NewKubectlProvider(args.WorkDir)
	}
	return migrate.NewManager(cfg, prov), nil
}

func runMigrate(ctx *mcli.Context) {
	var args commonArgs
	ctx.Parse(&args)
	mgr, err := newManager(&args)
	if err != nil {
		zlog.Fatalf("failed setup migration: %v", err)
	}
	if err = mgr.Run(context.Background()); err != nil {
		zlog.Fatalf("migration failed: %v", err)
	}
	zlog.Infof("success")
}

func runPlan(ctx *mcli.Context) {
	var args commonArgs
	ctx.Parse(&args)
	mgr, err := newManager(&args)
	if err != nil {
		zlog.Fatalf("failed setup migration: %v", err)
	}
	outcome, err := mgr.Plan(context.Background())
	if err != nil {
		zlog.Fatalf("planning failed: %v", err)
	}
	outcome.Report.Log()

	fmt.Println("routes:")
	for _, r := range outcome.Resolved.Routes {
		marker := ""
		if r.Residual {
			marker = " (fallback)"
		}
		fmt.Printf("  %4d  %-40s %s -> %s%s\n",
			r.Priority, r.Name, traefik.BuildMatch(r.Host, r.Path), r.Backend, marker)
	}

	planData, err := yaml.Marshal(outcome.Resolved.Plan)
	if err != nil {
		zlog.Fatalf("failed marshal fallback plan: %v", err)
	}
	fmt.Println("fallback plan:")
	fmt.Println(string(planData))
}

func runMiddlewares(ctx *mcli.Context) {
	var args commonArgs
	ctx.Parse(&args)
	mgr, err := newManager(&args)
	if err != nil {
		zlog.Fatalf("failed setup migration: %v", err)
	}
	if err = mgr.EmitMiddlewares(context.Background()); err != nil {
		zlog.Fatalf("failed emit middlewares: %v", err)
	}
	zlog.Infof("success")
}
