package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/KK-2k06/DreamInk/core"
	"github.com/fatih/color"
)

// printBanner writes the startup summary shown in the console.
func printBanner(w io.Writer, cfg *core.Config) {
	header := color.New(color.FgCyan, color.Bold)
	label := color.New(color.FgHiBlack)

	header.Fprintln(w, strings.Repeat("=", 44))
	header.Fprintln(w, "  DreamInk style server")
	header.Fprintln(w, strings.Repeat("=", 44))

	mode := "production"
	if cfg.DevMode {
		mode = "development"
	}
	engine := "enabled"
	if cfg.AuthOnly {
		engine = color.YellowString("disabled (AUTH_ONLY)")
	}

	rows := []struct{ name, value string }{
		{"Port", fmt.Sprintf("%d", cfg.Port)},
		{"Mode", mode},
		{"Data dir", cfg.DataDir},
		{"Database", cfg.DBPath},
		{"Styles", engine},
		{"Max upload", core.FormatBytes(cfg.MaxUploadBytes())},
	}
	for _, r := range rows {
		label.Fprintf(w, "  %-11s", r.name)
		fmt.Fprintln(w, r.value)
	}
	fmt.Fprintln(w)
}
