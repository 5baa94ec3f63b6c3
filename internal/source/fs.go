package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FSProvider reads a mail-export style tree: one directory per thread, one
// subdirectory per message, attachment files inside. Entries are enumerated
// in name order so runs are deterministic; hidden entries are skipped.
type FSProvider struct {
	root string
}

func NewFSProvider(root string) (*FSProvider, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("source root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source root %q is not a directory", root)
	}
	return &FSProvider{root: root}, nil
}

func (p *FSProvider) Threads(_ context.Context) ([]Thread, error) {
	dirs, err := listDirs(p.root)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	threads := make([]Thread, 0, len(dirs))
	for _, d := range dirs {
		threads = append(threads, fsThread{path: filepath.Join(p.root, d), id: d})
	}
	return threads, nil
}

type fsThread struct {
	path string
	id   string
}

func (t fsThread) ID() string { return t.id }

func (t fsThread) Messages(_ context.Context) ([]Message, error) {
	dirs, err := listDirs(t.path)
	if err != nil {
		return nil, fmt.Errorf("list messages in %s: %w", t.id, err)
	}
	msgs := make([]Message, 0, len(dirs))
	for _, d := range dirs {
		msgs = append(msgs, fsMessage{path: filepath.Join(t.path, d), id: d})
	}
	return msgs, nil
}

type fsMessage struct {
	path string
	id   string
}

func (m fsMessage) ID() string { return m.id }

func (m fsMessage) Attachments(_ context.Context) ([]Attachment, error) {
	entries, err := os.ReadDir(m.path)
	if err != nil {
		return nil, fmt.Errorf("list attachments in %s: %w", m.id, err)
	}
	var atts []Attachment
	for _, e := range entries {
		if e.IsDir() || isHidden(e.Name()) {
			continue
		}
		atts = append(atts, fsAttachment{path: filepath.Join(m.path, e.Name()), name: e.Name()})
	}
	sort.Slice(atts, func(i, j int) bool { return atts[i].Name() < atts[j].Name() })
	return atts, nil
}

type fsAttachment struct {
	path string
	name string
}

func (a fsAttachment) Name() string { return a.name }

func (a fsAttachment) Content(_ context.Context) ([]byte, error) {
	b, err := os.ReadFile(a.path)
	if err != nil {
		return nil, fmt.Errorf("read attachment %s: %w", a.name, err)
	}
	return b, nil
}

func listDirs(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() && !isHidden(e.Name()) {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
