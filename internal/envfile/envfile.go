// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package envfile rewrites the AGENT_ID record of a dotenv file while keeping every other line
// verbatim.
package envfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

const (
	AgentIDKey = "AGENT_ID"

	// Marker is the comment written above the AGENT_ID line.
	Marker = "# Agent created by gnoagent provision"

	// legacyMarker is the comment written by earlier setup scripts.
	legacyMarker = "Agent created by setup-agent.py"

	defaultPerm os.FileMode = 0644
)

// SetAgentID strips any prior AGENT_ID assignment and marker comment from the file at path,
// then appends a fresh marker and AGENT_ID line. The file is created if it does not exist.
func SetAgentID(path string, agentID string) error {
	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	content := Rewrite(string(existing), agentID)

	perm := defaultPerm
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}

// Rewrite returns content with prior AGENT_ID lines and marker comments removed, trailing
// whitespace trimmed, and a fresh marker plus AGENT_ID line appended.
func Rewrite(content string, agentID string) string {
	lines := strings.SplitAfter(content, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if isAgentIDLine(line) || isMarkerLine(line) {
			continue
		}
		kept = append(kept, line)
	}

	var sb strings.Builder
	preserved := strings.TrimRight(strings.Join(kept, ""), " \t\r\n")
	if preserved != "" {
		sb.WriteString(preserved)
		sb.WriteString("\n\n")
	}
	sb.WriteString(Marker)
	sb.WriteString("\n")
	sb.WriteString(AgentIDKey)
	sb.WriteString("=")
	sb.WriteString(agentID)
	sb.WriteString("\n")

	return sb.String()
}

func isAgentIDLine(line string) bool {
	return strings.HasPrefix(line, AgentIDKey+"=")
}

func isMarkerLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), Marker) || strings.Contains(line, legacyMarker)
}
