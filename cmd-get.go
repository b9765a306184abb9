package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel/attribute"
	"k8s.io/klog/v2"

	"github.com/aconfig/aconfig-storage/mapping"
	"github.com/aconfig/aconfig-storage/metrics"
	"github.com/aconfig/aconfig-storage/storage"
	"github.com/aconfig/aconfig-storage/telemetry"
)

func newCmd_Get() *cli.Command {
	return &cli.Command{
		Name:        "get",
		Usage:       "Look up a single boolean flag's value and attributes.",
		Description: "Resolves container/package/flag through the package map, flag map, flag value, and flag info files; all four must exist and be read-only.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to an aconfig config file (locator.path used when --locator is omitted)"},
			&cli.StringFlag{Name: "locator", Usage: "path to the locator record; overrides the config file's locator.path"},
			&cli.StringFlag{Name: "container", Required: true, Usage: "container name, e.g. system"},
			&cli.StringFlag{Name: "package", Required: true, Usage: "package name, e.g. com.a.x"},
			&cli.StringFlag{Name: "flag", Required: true, Usage: "flag name within the package"},
		},
		Action: func(c *cli.Context) error {
			_, span := telemetry.StartSpan(c.Context, "cmd.get")
			defer span.End()
			span.SetAttributes(
				attribute.String("session.id", GetSessionID()),
				attribute.String("aconfig.container", c.String("container")),
				attribute.String("aconfig.package", c.String("package")),
				attribute.String("aconfig.flag", c.String("flag")),
			)

			locatorPath, err := resolveLocatorPath(c)
			if err != nil {
				return err
			}

			cache := mapping.New(locatorPath)
			views, err := cache.Get(c.String("container"))
			if err != nil {
				telemetry.RecordError(span, err, "mapping container")
				return err
			}

			start := time.Now()
			result, found, err := storage.GetBooleanFlag(views.Storage(), c.String("package"), c.String("flag"))
			metrics.FlagLookupHistogram.WithLabelValues(c.String("container"), fmt.Sprintf("%t", found)).Observe(time.Since(start).Seconds())
			if err != nil {
				telemetry.RecordError(span, err, "looking up flag")
				return err
			}
			if !found {
				klog.V(1).InfoS("flag absent", "container", c.String("container"), "package", c.String("package"), "flag", c.String("flag"))
				fmt.Println("absent")
				return nil
			}

			fmt.Printf("value=%t type=%d\n", result.Value, result.Type)
			if result.HasInfo {
				fmt.Printf("attribute=0x%x is_read_write=%t\n", result.Attribute, result.Attribute&storage.AttrIsReadWrite != 0)
			}
			return nil
		},
	}
}
