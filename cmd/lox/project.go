package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"lox/internal/config"
	"lox/internal/format"
)

const sourceExt = ".lox"

func (c *cli) fmtFiles(args []string) int {
	fs := flag.NewFlagSet("fmt", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	writeBack := fs.Bool("w", false, "write result to (source) file")
	indent := fs.String("i", "  ", "indent string")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	targets := fs.Args()
	if len(targets) == 0 {
		targets = []string{"."}
	}
	files, err := collectSourceFiles(targets)
	if err != nil {
		fmt.Fprintln(c.stderr, "fmt error:", err)
		return exitIOErr
	}
	sort.Strings(files)

	status := exitOK
	for _, path := range files {
		b, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(c.stderr, "fmt error:", err)
			return exitIOErr
		}
		formatted, err := format.Format(string(b), format.Options{Indent: *indent})
		if err != nil {
			fmt.Fprintf(c.stderr, "%s:%v\n", path, err)
			status = exitDataErr
			continue
		}

		if !*writeBack {
			fmt.Fprint(c.stdout, formatted)
			continue
		}
		if string(b) != formatted {
			if err := writeFileAtomic(path, []byte(formatted)); err != nil {
				fmt.Fprintln(c.stderr, "fmt error:", err)
				return exitIOErr
			}
			fmt.Fprintf(c.stdout, "formatted %s\n", path)
		}
	}
	return status
}

func (c *cli) initProject(args []string) int {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	name := fs.String("name", "", "project name (default: directory name)")
	if err := fs.Parse(args); err != nil || fs.NArg() > 1 {
		return exitUsage
	}
	dir := "."
	if fs.NArg() == 1 {
		dir = fs.Arg(0)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintln(c.stderr, "init error:", err)
		return exitIOErr
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		fmt.Fprintln(c.stderr, "init error:", err)
		return exitIOErr
	}
	man := &config.Manifest{Name: *name, Entry: "main" + sourceExt}
	if man.Name == "" {
		man.Name = filepath.Base(abs)
	}
	if err := config.Save(dir, man); err != nil {
		fmt.Fprintln(c.stderr, "init error:", err)
		return exitIOErr
	}

	entry := filepath.Join(dir, man.Entry)
	if _, err := os.Stat(entry); os.IsNotExist(err) {
		if err := os.WriteFile(entry, []byte("print \"hello, \" + \""+man.Name+"\";\n"), 0o644); err != nil {
			fmt.Fprintln(c.stderr, "init error:", err)
			return exitIOErr
		}
	}
	fmt.Fprintf(c.stdout, "created %s\n", filepath.Join(dir, config.FileName))
	return exitOK
}

func collectSourceFiles(targets []string) ([]string, error) {
	var files []string
	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, target)
			continue
		}

		err = filepath.WalkDir(target, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if base := filepath.Base(path); path != target && strings.HasPrefix(base, ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(path, sourceExt) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func writeFileAtomic(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".loxfmt-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
