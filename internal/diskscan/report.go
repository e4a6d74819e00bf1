package diskscan

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/n0roo/mdhelper/internal/report"
)

const header = "> *Markdown generated report by [mdhelper](https://github.com/n0roo/mdhelper) - do not edit*\n"

// Summary counts what the errors report asks to check
type Summary struct {
	DuplicatedFolders int `json:"duplicated_folders"`
	DuplicatedFiles   int `json:"duplicated_files"`
	UnsortedFiles     int `json:"unsorted_files"`
	SuspiciousFiles   int `json:"suspicious_files"`
}

// Summary returns the check counts of the scan
func (r *Result) Summary() Summary {
	s := Summary{
		DuplicatedFolders: len(r.Folders.Duplicates()),
		DuplicatedFiles:   len(r.Files.Duplicates()),
		SuspiciousFiles:   len(r.Suspicious),
	}
	for _, u := range r.Unsorted {
		s.UnsortedFiles += len(u.Files)
	}
	return s
}

// RenderAll lists every leaf folder as a wiki link with its location
func (r *Result) RenderAll() []byte {
	var b strings.Builder
	b.WriteString(header + "\n")
	for _, leaf := range r.Folders.Leaves(r.ignore) {
		fmt.Fprintf(&b, " - [[%s]] : [```%s```](<%s>)\n", leaf.Name, leaf.Name, filepath.ToSlash(leaf.Path))
	}
	return []byte(b.String())
}

// RenderErrors lists statistics, duplicates, unsorted and suspicious files
func (r *Result) RenderErrors() []byte {
	var b strings.Builder
	b.WriteString(header)
	fmt.Fprintf(&b, "\n> %d folders detected, %d files detected", r.Global.Folders, r.Global.Files)
	fmt.Fprintf(&b, "\n> %d unique folders detected, %d unique files detected", r.Folders.Unique(), r.Files.Unique())

	b.WriteString("\n\nSome statistics:\n")
	writeStat(&b, r.Global)
	b.WriteString("\nDetailed:\n")
	for _, stat := range r.Stats {
		writeStat(&b, stat)
	}

	b.WriteString("\n\n# Folders\n")
	writeEntries(&b, r.Folders)
	b.WriteString("\n# Files\n")
	writeEntries(&b, r.Files)

	b.WriteString("\n# Unsorted Files\n")
	for _, u := range r.Unsorted {
		if len(u.Files) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n", u.Folder)
		fmt.Fprintf(&b, ">   [```%s```](<%s>)\n", u.Folder, filepath.ToSlash(u.Folder))
		for _, file := range u.Files {
			fmt.Fprintf(&b, "- %s\n", file)
		}
	}

	b.WriteString("\n----\n# Suspicious uncompressed files\n\n")
	for _, s := range r.Suspicious {
		writeDuplicate(&b, s)
	}
	b.WriteString("\n----\n")

	s := r.Summary()
	fmt.Fprintf(&b, "\n> %d duplicated folder to check\n> %d duplicated files to check\n> %d unsorted files to check\n> %d suspicious files to check\n",
		s.DuplicatedFolders, s.DuplicatedFiles, s.UnsortedFiles, s.SuspiciousFiles)
	return []byte(b.String())
}

// Write replaces both reports under root. Returns the written paths.
func (r *Result) Write(root, targetAll, targetErrors string) ([]string, error) {
	allPath := filepath.Join(root, targetAll)
	if err := report.WriteFile(allPath, r.RenderAll()); err != nil {
		return nil, err
	}
	errPath := filepath.Join(root, targetErrors)
	if err := report.WriteFile(errPath, r.RenderErrors()); err != nil {
		return nil, err
	}
	return []string{allPath, errPath}, nil
}

func writeStat(b *strings.Builder, s Stat) {
	fmt.Fprintf(b, " - ```%s```: Folders: %d, Files: %d \n", s.Name, s.Folders, s.Files)
}

func writeDuplicate(b *strings.Builder, d Duplicate) {
	fmt.Fprintf(b, " - Entry: ```%s``` \n", d.Name)
	for _, loc := range d.Locations {
		fmt.Fprintf(b, "        |   [```%s```](<%s>)\n", loc, filepath.ToSlash(loc))
	}
}

func writeEntries(b *strings.Builder, e *Entries) {
	for _, d := range e.Duplicates() {
		writeDuplicate(b, d)
		b.WriteString("\n")
	}

	writeVariants(b, e, e.CaseVariants(), "name(s) with different case")
	writeVariants(b, e, e.AlnumVariants(), "name(s) when checking only normal characters")
}

func writeVariants(b *strings.Builder, e *Entries, vs []Variant, what string) {
	if len(vs) == 0 {
		return
	}
	fmt.Fprintf(b, "\n----\n%d Duplicate(s) %s %s", len(vs), e.Kind, what)
	for _, v := range vs {
		fmt.Fprintf(b, "\n - %s : ", v.Key)
		for _, name := range v.Names {
			fmt.Fprintf(b, " [```%s```](<%s>)  ", name, filepath.ToSlash(e.First(name)))
		}
	}
	b.WriteString("\n----\n")
}
