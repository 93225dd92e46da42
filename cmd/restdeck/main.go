// Command restdeck manages API request collections from the terminal:
// import (Postman JSON, curl commands, .http files, OpenAPI specs),
// sanitized export, tree listing and reordering, environments.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/unkn0wn-root/restdeck/internal/collection"
	"github.com/unkn0wn-root/restdeck/internal/config"
	"github.com/unkn0wn-root/restdeck/internal/errdef"
	"github.com/unkn0wn-root/restdeck/internal/export"
	exphttp "github.com/unkn0wn-root/restdeck/internal/export/httpfile"
	"github.com/unkn0wn-root/restdeck/internal/flattree"
	curlimport "github.com/unkn0wn-root/restdeck/internal/importer/curl"
	httpimport "github.com/unkn0wn-root/restdeck/internal/importer/httpfile"
	openapiimport "github.com/unkn0wn-root/restdeck/internal/importer/openapi"
	postmanimport "github.com/unkn0wn-root/restdeck/internal/importer/postman"
	"github.com/unkn0wn-root/restdeck/internal/reorder"
	"github.com/unkn0wn-root/restdeck/internal/store"
	"github.com/unkn0wn-root/restdeck/internal/vars"
)

var version = "dev"

func main() {
	log.SetFlags(0)

	settings, _, err := config.LoadSettings()
	if err != nil {
		log.Fatalf("restdeck: %v", err)
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ws, err := store.Open(settings.Workspace)
	if err != nil {
		log.Fatalf("restdeck: %v", err)
	}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "import":
		runImport(ws, args)
	case "export":
		runExport(ws, settings, args)
	case "list":
		runList(ws, args)
	case "move":
		runMove(ws, args)
	case "env":
		runEnv(ws, args)
	case "version":
		fmt.Println("restdeck", version)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: restdeck <command> [flags]

commands:
  import <file>                          import a collection (postman, curl, http, openapi)
  export <collection>                    export a collection
  list <collection>                      print the collection tree
  move <collection> <id> <pos> <target>  reorder an item (pos: before|after|inside)
  env <list|import|set> ...              manage environments
  version                                print the version`)
}

func runImport(ws *store.Workspace, args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	format := fs.String("format", "auto", "input format: auto, postman, curl, http, openapi")
	name := fs.String("name", "", "collection name (defaults to the file name)")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		log.Fatalf("import: expected exactly one input file")
	}

	path := fs.Arg(0)
	if vars.IsDotEnvPath(path) {
		log.Fatalf("import: %s is an environment file, use: restdeck env import %s", path, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("import: %v", err)
	}

	colName := *name
	if colName == "" {
		colName = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	col, warnings, err := parseInput(data, path, *format, colName)
	if err != nil {
		log.Fatalf("import: %v", err)
	}
	for _, warning := range warnings {
		log.Printf("import: warning: %s", warning)
	}

	if err := ws.SaveCollection(col); err != nil {
		log.Fatalf("import: %v", err)
	}
	fmt.Printf("imported %q (%d items)\n", col.Info.Name, countItems(col))
}

func parseInput(data []byte, path, format, name string) (*collection.Collection, []string, error) {
	if format == "auto" {
		format = detectFormat(data, path)
	}
	switch format {
	case "postman":
		col, err := postmanimport.Parse(data)
		return col, nil, err
	case "curl":
		item, err := curlimport.Parse(string(data))
		if err != nil {
			return nil, nil, err
		}
		col := collection.New(name)
		col.Items = []*collection.Item{item}
		return col, nil, nil
	case "http":
		res, err := httpimport.Parse(data)
		if err != nil {
			return nil, nil, err
		}
		col := collection.New(name)
		col.Items = res.Items
		for key, value := range res.Variables {
			col.Variables = append(col.Variables, collection.Variable{
				Key: key, Value: value, Type: collection.VariableDefault, Enabled: true,
			})
		}
		var warnings []string
		for _, w := range res.Warnings {
			warnings = append(warnings, w.String())
		}
		return col, warnings, nil
	case "openapi":
		col, err := openapiimport.Parse(context.Background(), data)
		return col, nil, err
	default:
		return nil, nil, errdef.New(errdef.CodeImport, "unknown format %q", format)
	}
}

func detectFormat(data []byte, path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".http", ".rest":
		return "http"
	case ".yaml", ".yml":
		return "openapi"
	}
	trimmed := strings.TrimSpace(string(data))
	switch {
	case postmanimport.Sniff(data):
		return "postman"
	case strings.HasPrefix(trimmed, "curl ") || strings.Contains(trimmed, " curl "):
		return "curl"
	case strings.HasPrefix(trimmed, "{"):
		return "openapi"
	default:
		return "http"
	}
}

func runExport(ws *store.Workspace, settings config.Settings, args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("o", "", "output file (stdout when empty)")
	format := fs.String("format", "postman", "output format: postman, http")
	insecure := fs.Bool("insecure", false, "include secret values instead of redacting them")
	pretty := fs.Bool("pretty", settings.Export.PrettyPrint, "pretty-print JSON output")
	meta := fs.Bool("meta", settings.Export.IncludeMetadata, "stamp export id and timestamp")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		log.Fatalf("export: expected exactly one collection name")
	}

	col, err := ws.LoadCollection(fs.Arg(0))
	if err != nil {
		log.Fatalf("export: %v", err)
	}

	switch *format {
	case "postman":
		data, err := export.Postman(col, export.Options{
			IncludeSensitiveData: *insecure,
			PrettyPrint:          *pretty,
			IncludeMetadata:      *meta,
		})
		if err != nil {
			log.Fatalf("export: %v", err)
		}
		if *out == "" {
			fmt.Println(string(data))
			return
		}
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			log.Fatalf("export: %v", err)
		}
	case "http":
		opts := exphttp.Options{
			IncludeSensitiveData: *insecure,
			OverwriteExisting:    true,
			HeaderComment:        "Exported from restdeck",
		}
		if *out == "" {
			fmt.Print(exphttp.Render(col, opts))
			return
		}
		if err := exphttp.WriteFile(col, *out, opts); err != nil {
			log.Fatalf("export: %v", err)
		}
	default:
		log.Fatalf("export: unknown format %q", *format)
	}
}

func runList(ws *store.Workspace, args []string) {
	if len(args) != 1 {
		log.Fatalf("list: expected exactly one collection name")
	}
	col, err := ws.LoadCollection(args[0])
	if err != nil {
		log.Fatalf("list: %v", err)
	}

	flat, err := flattree.Flatten(col, flattree.ExpandAll(col))
	if err != nil {
		log.Fatalf("list: %v", err)
	}
	for _, entry := range flat {
		indent := strings.Repeat("  ", entry.Depth)
		switch entry.Kind {
		case flattree.KindCollection:
			fmt.Printf("%s %s\n", entry.Name, entry.ID)
		case flattree.KindFolder:
			fmt.Printf("%s%s/  %s\n", indent, entry.Name, entry.ID)
		default:
			fmt.Printf("%s%s  %s\n", indent, entry.Name, entry.ID)
		}
	}
}

func runMove(ws *store.Workspace, args []string) {
	if len(args) != 4 {
		log.Fatalf("move: expected <collection> <id> <before|after|inside> <target-id>")
	}
	name, draggedID, pos, targetID := args[0], args[1], args[2], args[3]

	col, err := ws.LoadCollection(name)
	if err != nil {
		log.Fatalf("move: %v", err)
	}

	flat, err := flattree.Flatten(col, flattree.ExpandAll(col))
	if err != nil {
		log.Fatalf("move: %v", err)
	}
	moved, err := reorder.ApplyMove(flat, draggedID, targetID, reorder.Position(pos))
	if err != nil {
		log.Fatalf("move: %v", errdef.Wrap(errdef.CodeMove, err, "reorder %s", name))
	}
	items, err := flattree.Unflatten(moved, col)
	if err != nil {
		log.Fatalf("move: %v", err)
	}
	col.Items = items

	if err := ws.SaveCollection(col); err != nil {
		log.Fatalf("move: %v", err)
	}
	fmt.Printf("moved %s %s %s\n", draggedID, pos, targetID)
}

func runEnv(ws *store.Workspace, args []string) {
	if len(args) < 1 {
		log.Fatalf("env: expected <list|import|set>")
	}
	switch args[0] {
	case "list":
		names, err := ws.ListEnvironments()
		if err != nil {
			log.Fatalf("env: %v", err)
		}
		for _, name := range names {
			fmt.Println(name)
		}
	case "import":
		if len(args) != 2 {
			log.Fatalf("env import: expected a .env file path")
		}
		env, err := vars.LoadDotEnv(args[1])
		if err != nil {
			log.Fatalf("env: %v", err)
		}
		if err := ws.SaveEnvironment(env); err != nil {
			log.Fatalf("env: %v", err)
		}
		fmt.Printf("imported environment %q (%d variables)\n", env.Name, len(env.Variables))
	case "set":
		fs := flag.NewFlagSet("env set", flag.ExitOnError)
		secret := fs.Bool("secret", false, "mark the variable as a secret")
		_ = fs.Parse(args[1:])
		if fs.NArg() != 3 {
			log.Fatalf("env set: expected <env> <key> <value>")
		}
		env, err := ws.LoadEnvironment(fs.Arg(0))
		if err != nil {
			env = &vars.Environment{Name: fs.Arg(0)}
		}
		env.Set(fs.Arg(1), fs.Arg(2), *secret)
		if err := ws.SaveEnvironment(env); err != nil {
			log.Fatalf("env: %v", err)
		}
	default:
		log.Fatalf("env: unknown subcommand %q", args[0])
	}
}

func countItems(col *collection.Collection) int {
	count := 0
	col.Walk(func(_ *collection.Item, _ *collection.Item, _ int) bool {
		count++
		return true
	})
	return count
}
