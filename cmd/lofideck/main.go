package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "serve":
		os.Exit(runServe(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: lofideck <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve               Start the lofideck daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'lofideck <command> --help' for command-specific options.")
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	addr := fs.String("addr", "http://127.0.0.1:7856", "Daemon base URL")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: lofideck status [--addr URL]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show the running daemon's windows and playback state.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(*addr + "/api/state")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer resp.Body.Close()

	var state struct {
		Windows []struct {
			Type      string `json:"type"`
			Maximized bool   `json:"maximized"`
			Z         int    `json:"z"`
		} `json:"windows"`
		Playback struct {
			PlaylistID string `json:"playlist_id"`
			TrackIndex int    `json:"track_index"`
			Track      *struct {
				Title  string `json:"title"`
				Artist string `json:"artist"`
			} `json:"track"`
			Playing bool `json:"playing"`
			Volume  int  `json:"volume"`
			Muted   bool `json:"muted"`
			Shuffle bool `json:"shuffle"`
		} `json:"playback"`
		Viewport struct {
			Width  int `json:"width"`
			Height int `json:"height"`
		} `json:"viewport"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	fmt.Printf("viewport:     %dx%d\n", state.Viewport.Width, state.Viewport.Height)
	fmt.Printf("open_windows: %d\n", len(state.Windows))
	for _, w := range state.Windows {
		marker := ""
		if w.Maximized {
			marker = " (maximized)"
		}
		fmt.Printf("  z=%-4d %s%s\n", w.Z, w.Type, marker)
	}
	fmt.Printf("playlist:     %s\n", state.Playback.PlaylistID)
	if t := state.Playback.Track; t != nil {
		fmt.Printf("track:        #%d %s - %s\n", state.Playback.TrackIndex, t.Artist, t.Title)
	}
	fmt.Printf("playing:      %v\n", state.Playback.Playing)
	fmt.Printf("volume:       %d (muted: %v, shuffle: %v)\n",
		state.Playback.Volume, state.Playback.Muted, state.Playback.Shuffle)
	return 0
}
