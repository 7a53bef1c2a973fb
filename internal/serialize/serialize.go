// Package serialize implements the authorship log wire format from
// spec.md §4.3: two sections separated by a literal "\n---\n" divider, an
// attestation section followed by a metadata JSON section. Uses
// encoding/json only (standard library) because the round-trip law in
// spec.md §8 requires byte-identical serialize→deserialize→serialize
// output, which argues against a third-party marshaler whose field
// ordering or whitespace conventions this repo does not control (see
// DESIGN.md).
package serialize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/git-ai-oss/gitai/internal/attribution"
)

const divider = "\n---\n"

// metadata is the JSON section of a serialized authorship log: everything
// except the per-file attestation listing, which is serialized separately
// in the compact attestation-section format.
type metadata struct {
	SchemaVersion string                              `json:"schema_version"`
	BaseCommitSHA string                              `json:"base_commit_sha"`
	Prompts       map[string]attribution.PromptRecord  `json:"prompts"`
	ToolVersion   string                               `json:"tool_version,omitempty"`
}

// Marshal serializes an authorship log into gitai's two-section wire
// format.
func Marshal(log *attribution.AuthorshipLog) ([]byte, error) {
	var attest bytes.Buffer
	writeAttestationSection(&attest, log.Attestations)

	meta := metadata{
		SchemaVersion: log.SchemaVersion,
		BaseCommitSHA: log.BaseCommitSHA,
		Prompts:       log.Prompts,
		ToolVersion:   log.ToolVersion,
	}
	metaJSON, err := marshalMetadataDeterministic(meta)
	if err != nil {
		return nil, fmt.Errorf("marshaling authorship log metadata: %w", err)
	}

	var out bytes.Buffer
	out.Write(attest.Bytes())
	out.WriteString(divider)
	out.Write(metaJSON)
	return out.Bytes(), nil
}

// marshalMetadataDeterministic marshals meta with sorted map keys (Go's
// encoding/json already sorts map[string]T keys lexically) and no trailing
// newline inside the section, so repeated Marshal calls on equal input
// produce byte-identical output.
func marshalMetadataDeterministic(meta metadata) ([]byte, error) {
	return json.Marshal(meta)
}

// Unmarshal parses gitai's two-section wire format back into an
// AuthorshipLog.
func Unmarshal(data []byte) (*attribution.AuthorshipLog, error) {
	idx := bytes.Index(data, []byte(divider))
	if idx < 0 {
		return nil, fmt.Errorf("malformed authorship log: missing %q divider", strings.TrimSpace(divider))
	}
	attestSection := data[:idx]
	metaSection := data[idx+len(divider):]

	attestations, err := parseAttestationSection(attestSection)
	if err != nil {
		return nil, fmt.Errorf("parsing attestation section: %w", err)
	}

	var meta metadata
	if err := json.Unmarshal(metaSection, &meta); err != nil {
		return nil, fmt.Errorf("parsing metadata section: %w", err)
	}

	return &attribution.AuthorshipLog{
		SchemaVersion: meta.SchemaVersion,
		BaseCommitSHA: meta.BaseCommitSHA,
		Attestations:  attestations,
		Prompts:       meta.Prompts,
		ToolVersion:   meta.ToolVersion,
	}, nil
}

// AttestedPaths reads only the attestation section's file paths, without
// parsing the metadata JSON. This is the partial-parse fast path spec.md
// §4.3 and §4.8 call out for the AI-touched-file traversal: callers that
// only need "did this commit touch file X via AI" don't pay for decoding
// every prompt record.
func AttestedPaths(data []byte) ([]string, error) {
	idx := bytes.Index(data, []byte(divider))
	if idx < 0 {
		return nil, fmt.Errorf("malformed authorship log: missing %q divider", strings.TrimSpace(divider))
	}
	lines := strings.Split(string(bytes.TrimRight(data[:idx], "\n")), "\n")
	paths := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		path, _, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// writeAttestationSection writes one line per file: path, a tab, then a
// space-separated list of "prompt_hash:ranges" groups, where ranges use
// the compact form from spec.md §4.3 (a lone integer for a single line, a
// two-element array for a closed range).
func writeAttestationSection(w *bytes.Buffer, attestations []attribution.FileAttribution) {
	sorted := make([]attribution.FileAttribution, len(attestations))
	copy(sorted, attestations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	for _, fa := range sorted {
		w.WriteString(fa.Path)
		w.WriteByte('\t')
		groups := groupByAuthor(fa.Ranges)
		for i, g := range groups {
			if i > 0 {
				w.WriteByte(' ')
			}
			w.WriteString(g.author)
			w.WriteByte(':')
			for j, r := range g.ranges {
				if j > 0 {
					w.WriteByte(',')
				}
				w.WriteString(formatRange(r))
			}
		}
		w.WriteByte('\n')
	}
}

type authorGroup struct {
	author string
	ranges []attribution.LineRange
}

// groupByAuthor groups consecutive-in-input ranges sharing the same
// author, preserving input order (the input is expected to already be
// Canonicalized, i.e. sorted by Start).
func groupByAuthor(ranges []attribution.LineRange) []authorGroup {
	var groups []authorGroup
	for _, r := range ranges {
		if len(groups) > 0 && groups[len(groups)-1].author == r.Author {
			groups[len(groups)-1].ranges = append(groups[len(groups)-1].ranges, r)
			continue
		}
		groups = append(groups, authorGroup{author: r.Author, ranges: []attribution.LineRange{r}})
	}
	return groups
}

func formatRange(r attribution.LineRange) string {
	if r.Start == r.End {
		return strconv.Itoa(r.Start)
	}
	return fmt.Sprintf("[%d,%d]", r.Start, r.End)
}

// parseAttestationSection parses the compact per-file attestation listing
// back into FileAttribution entries.
func parseAttestationSection(section []byte) ([]attribution.FileAttribution, error) {
	trimmed := strings.TrimRight(string(section), "\n")
	if trimmed == "" {
		return nil, nil
	}
	lines := strings.Split(trimmed, "\n")
	out := make([]attribution.FileAttribution, 0, len(lines))
	for _, line := range lines {
		path, rest, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("malformed attestation line %q: missing path separator", line)
		}
		var ranges []attribution.LineRange
		for _, group := range strings.Fields(rest) {
			author, rangesStr, ok := strings.Cut(group, ":")
			if !ok {
				return nil, fmt.Errorf("malformed attestation group %q for %s", group, path)
			}
			for _, rs := range strings.Split(rangesStr, ",") {
				r, err := parseRange(rs, author)
				if err != nil {
					return nil, fmt.Errorf("parsing range %q for %s: %w", rs, path, err)
				}
				ranges = append(ranges, r)
			}
		}
		out = append(out, attribution.FileAttribution{Path: path, Ranges: ranges})
	}
	return out, nil
}

func parseRange(s, author string) (attribution.LineRange, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		inner := s[1 : len(s)-1]
		parts := strings.SplitN(inner, ",", 2)
		if len(parts) != 2 {
			return attribution.LineRange{}, fmt.Errorf("expected [start,end], got %q", s)
		}
		start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return attribution.LineRange{}, err
		}
		end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return attribution.LineRange{}, err
		}
		return attribution.LineRange{Start: start, End: end, Author: author}, nil
	}
	line, err := strconv.Atoi(s)
	if err != nil {
		return attribution.LineRange{}, err
	}
	return attribution.LineRange{Start: line, End: line, Author: author}, nil
}
