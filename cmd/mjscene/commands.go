package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/mjscene/internal/drawable"
	"github.com/Faultbox/mjscene/internal/export"
)

func cmdCompile(args []string) error {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	timings := fs.Bool("t", false, "Print per-stage timings")
	e, err := setup(fs, args, 1, "mjscene compile <scene.xml>")
	if err != nil {
		return err
	}

	res, err := e.compiler.CompileFile(context.Background(), e.scene)
	if err != nil {
		return err
	}

	col := res.Collection
	b := col.Bounds()
	fmt.Printf("Scene:      %s\n", e.scene)
	fmt.Printf("Meshes:     %d\n", len(col.Meshes))
	fmt.Printf("Vertices:   %d\n", col.VertexCount())
	fmt.Printf("Indices:    %d\n", col.IndexCount())
	fmt.Printf("Draw calls: %d\n", len(col.DrawMap()))
	fmt.Printf("Textures:   %s\n", textureNames(col))
	fmt.Printf("Bounds:     %v .. %v\n", b.Min, b.Max)

	if *timings {
		fmt.Println()
		fmt.Println("Stages:")
		for _, s := range res.Stages {
			fmt.Printf("  %-10s %v\n", s.Name, s.Duration)
		}
	}
	return nil
}

func textureNames(col *drawable.Collection) string {
	var names []string
	for _, t := range col.Textures() {
		names = append(names, t.Name)
	}
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}

func cmdFiles(args []string) error {
	fs := flag.NewFlagSet("files", flag.ExitOnError)
	resolve := fs.Bool("r", false, "Show where each file was found")
	e, err := setup(fs, args, 1, "mjscene files [-r] <scene.xml>")
	if err != nil {
		return err
	}

	res, err := e.compiler.ResolveFile(context.Background(), e.scene)
	if err != nil {
		return err
	}

	missing := 0
	for _, f := range res.Tree.ToLoadFiles() {
		full, err := e.loader.Resolve(f)
		switch {
		case err != nil:
			missing++
			fmt.Printf("%s\t(not found)\n", f)
		case *resolve:
			fmt.Printf("%s\t%s\n", f, full)
		default:
			fmt.Println(f)
		}
	}

	if missing > 0 {
		fmt.Fprintf(os.Stderr, "\n(%d files not found)\n", missing)
	}
	return nil
}

func cmdTree(args []string) error {
	fs := flag.NewFlagSet("tree", flag.ExitOnError)
	e, err := setup(fs, args, 1, "mjscene tree <scene.xml>")
	if err != nil {
		return err
	}

	res, err := e.compiler.ResolveFile(context.Background(), e.scene)
	if err != nil {
		return err
	}
	return res.Tree.Dump(os.Stdout)
}

func cmdExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	e, err := setup(fs, args, 1, "mjscene export <scene.xml> [out.glb|out.gltf]")
	if err != nil {
		return err
	}

	out := exportPath(e.scene, e.args, e.cfg.Export.Binary)

	res, err := e.compiler.CompileFile(context.Background(), e.scene)
	if err != nil {
		return err
	}
	if err := export.WriteFile(out, res.Collection); err != nil {
		return err
	}

	fmt.Printf("Exported %d meshes to %s\n", len(res.Collection.Meshes), out)
	return nil
}

// exportPath picks the output file. Without one, the scene name is
// reused; without an extension, export.binary decides between .glb and
// .gltf.
func exportPath(scenePath string, args []string, binary bool) string {
	out := ""
	if len(args) > 0 {
		out = args[0]
	} else {
		base := filepath.Base(scenePath)
		out = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if filepath.Ext(out) == "" {
		if binary {
			out += ".glb"
		} else {
			out += ".gltf"
		}
	}
	return out
}
