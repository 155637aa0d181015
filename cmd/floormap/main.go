// Command floormap renders generated floors as ASCII maps for eyeballing
// the generator's output without running a server.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/towerspire/server/internal/config"
	"github.com/towerspire/server/internal/entity"
	"github.com/towerspire/server/internal/floorgen"
	"github.com/towerspire/server/internal/rng"
)

func main() {
	gameConfigFile := flag.String("game", "config/game.yaml", "Path to game tuning YAML file")
	seed := flag.Int64("seed", 0, "Generator seed (0 means random)")
	fromFloor := flag.Int("from", 1, "First floor to render")
	toFloor := flag.Int("to", 1, "Last floor to render")
	outputFile := flag.String("output", "", "Output file (empty for stdout)")
	showLegend := flag.Bool("legend", true, "Show legend")
	flag.Parse()

	cfg, err := config.Load(*gameConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading game config: %v\n", err)
		os.Exit(1)
	}
	if *fromFloor < 1 || *toFloor < *fromFloor {
		fmt.Fprintln(os.Stderr, "Error: floor range must satisfy 1 <= from <= to")
		os.Exit(1)
	}

	genSeed := *seed
	if genSeed == 0 {
		genSeed = time.Now().UnixNano()
	}
	gen := floorgen.New(cfg, rng.NewSeeded(genSeed))

	var out strings.Builder
	fmt.Fprintf(&out, "seed: %d\n\n", genSeed)

	var prev *entity.Floor
	streak := 0
	for level := 1; level <= *toFloor; level++ {
		floor, next := gen.Generate(level, prev, streak)
		prev, streak = floor, next
		if level < *fromFloor {
			continue
		}
		renderFloor(&out, floor)
	}
	if *showLegend {
		writeLegend(&out)
	}

	if *outputFile == "" {
		fmt.Print(out.String())
		return
	}
	if err := os.WriteFile(*outputFile, []byte(out.String()), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *outputFile)
}

func renderFloor(out *strings.Builder, floor *entity.Floor) {
	tag := ""
	if floor.IsMerchantFloor {
		tag = " (merchant)"
	}
	fmt.Fprintf(out, "=== Floor %d%s ===\n", floor.Level, tag)

	for _, row := range floor.Render(floor.PlayerStart) {
		out.WriteString(strings.Join(row, " "))
		out.WriteByte('\n')
	}

	alive := 0
	for _, m := range floor.Monsters {
		if m.Alive() {
			alive++
		}
	}
	fmt.Fprintf(out, "monsters: %d  items: %d\n\n", alive, len(floor.Items))
}

func writeLegend(out *strings.Builder) {
	out.WriteString("legend:\n")
	for _, line := range []struct{ symbol, meaning string }{
		{entity.SymbolPlayer, "player start"},
		{entity.SymbolMonster, "monster"},
		{entity.SymbolStairs, "stairs down"},
		{entity.SymbolPotion, "potion"},
		{entity.SymbolWeapon, "weapon"},
		{entity.SymbolArmor, "armor"},
		{entity.SymbolMerchant, "merchant"},
		{entity.SymbolWall, "wall"},
		{entity.SymbolEmpty, "floor"},
	} {
		fmt.Fprintf(out, "  %s  %s\n", line.symbol, line.meaning)
	}
}
