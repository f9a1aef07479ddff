// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"context"
	"fmt"
	"os"

	"gnoagent/internal/cmd"
	"gnoagent/internal/exterrors"
	"gnoagent/internal/output"

	"github.com/fatih/color"
)

func init() {
	forceColorVal, has := os.LookupEnv("FORCE_COLOR")
	if has && forceColorVal == "1" {
		color.NoColor = false
	}
}

func main() {
	ctx := context.Background()

	rootCmd := cmd.NewRootCommand()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		color.Red("Error: %v", err)
		if suggestion := exterrors.Suggestion(err); suggestion != "" {
			fmt.Println(output.WithGrayFormat("Suggestion: %s", suggestion))
		}
		os.Exit(1)
	}
}
