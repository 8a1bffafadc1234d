package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cheggaaa/pb/v3"
	"github.com/gernest/wow"
	"github.com/gernest/wow/spin"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/cellforge/lifegrid/internal/board"
	"github.com/cellforge/lifegrid/internal/config"
	"github.com/cellforge/lifegrid/internal/generate"
	"github.com/cellforge/lifegrid/internal/oracle"
	"github.com/cellforge/lifegrid/internal/pattern"
	"github.com/cellforge/lifegrid/internal/rng"
	"github.com/cellforge/lifegrid/internal/scheduler"
	"github.com/cellforge/lifegrid/internal/tui"
)

var (
	configFile string
	seed       int64

	width    int
	height   int
	density  float64
	alphabet string

	interval    time.Duration
	callTimeout time.Duration

	oracleMode string
	endpoint   string
	contract   string
	account    string
	network    string

	generations int
	outFile     string
	addr        string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lifegrid",
		Short: "multi-colony game of life lab",
		RunE:  runTUI,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	rootCmd.PersistentFlags().IntVar(&width, "width", config.DefaultWidth, "board width")
	rootCmd.PersistentFlags().IntVar(&height, "height", config.DefaultHeight, "board height")
	rootCmd.PersistentFlags().Float64Var(&density, "density", config.DefaultDensity, "seeding density [0,1]")
	rootCmd.PersistentFlags().StringVar(&alphabet, "alphabet", config.DefaultAlphabet, "colony markers")
	rootCmd.PersistentFlags().DurationVar(&interval, "interval", config.DefaultInterval, "animation interval")
	rootCmd.PersistentFlags().DurationVar(&callTimeout, "call-timeout", 0, "generation call timeout (0 = none)")
	rootCmd.PersistentFlags().StringVar(&oracleMode, "oracle", config.DefaultMode, "oracle mode: local or remote")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "remote service address")
	rootCmd.PersistentFlags().StringVar(&contract, "contract", "", "remote target identifier")
	rootCmd.PersistentFlags().StringVar(&account, "account", "", "remote execution principal")
	rootCmd.PersistentFlags().StringVar(&network, "network", "", "remote network identifier")

	runCmd := &cobra.Command{
		Use:   "run [board-file]",
		Short: "advance a board by many generations",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBatch,
	}
	runCmd.Flags().IntVarP(&generations, "generations", "n", 100, "generations to run")
	runCmd.Flags().StringVarP(&outFile, "out", "o", "", "write the final board to a file")

	stepCmd := &cobra.Command{
		Use:   "step [board-file]",
		Short: "advance a board by one generation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runStep,
	}
	stepCmd.Flags().StringVarP(&outFile, "out", "o", "", "write the board to a file")

	randomCmd := &cobra.Command{
		Use:   "random",
		Short: "generate a random board",
		RunE:  runRandom,
	}
	randomCmd.Flags().StringVarP(&outFile, "out", "o", "", "write the board to a file")

	placeCmd := &cobra.Command{
		Use:   "place [pattern] [board-file]",
		Short: "stamp a pattern at a random spot",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runPlace,
	}
	placeCmd.Flags().StringVarP(&outFile, "out", "o", "", "write the board to a file")

	patternsCmd := &cobra.Command{
		Use:   "patterns",
		Short: "list built-in patterns",
		RunE:  listPatterns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [board-file]",
		Short: "plot population over generations",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPlot,
	}
	plotCmd.Flags().IntVarP(&generations, "generations", "n", 100, "generations to run")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "run a generation service",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8020", "listen address")

	rootCmd.AddCommand(runCmd, stepCmd, randomCmd, placeCmd, patternsCmd, plotCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig merges the optional config file with CLI flags; changed flags
// win.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("width") {
		cfg.Board.Width = width
	}
	if cmd.Flags().Changed("height") {
		cfg.Board.Height = height
	}
	if cmd.Flags().Changed("density") {
		cfg.Board.Density = density
	}
	if cmd.Flags().Changed("alphabet") {
		cfg.Board.Alphabet = alphabet
	}
	if cmd.Flags().Changed("interval") {
		cfg.Animation.Interval = config.Duration(interval)
	}
	if cmd.Flags().Changed("call-timeout") {
		cfg.Animation.CallTimeout = config.Duration(callTimeout)
	}
	if cmd.Flags().Changed("oracle") {
		cfg.Oracle.Mode = oracleMode
	}
	if cmd.Flags().Changed("endpoint") {
		cfg.Oracle.Endpoint = endpoint
	}
	if cmd.Flags().Changed("contract") {
		cfg.Oracle.Contract = contract
	}
	if cmd.Flags().Changed("account") {
		cfg.Oracle.Account = account
	}
	if cmd.Flags().Changed("network") {
		cfg.Oracle.Network = network
	}
	if cfg.Seed == 0 || cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	return cfg, nil
}

func buildOracle(cfg *config.Config, r *rng.Source) (oracle.Oracle, error) {
	switch cfg.Oracle.Mode {
	case "local", "":
		return oracle.NewEngine(r), nil
	case "remote":
		return oracle.NewRemote(oracle.Options{
			Endpoint: cfg.Oracle.Endpoint,
			Contract: cfg.Oracle.Contract,
			Account:  cfg.Oracle.Account,
			Network:  cfg.Oracle.Network,
		})
	default:
		return nil, fmt.Errorf("unknown oracle mode %q", cfg.Oracle.Mode)
	}
}

func parseAlphabet(cfg *config.Config) (board.Alphabet, error) {
	return board.ParseAlphabet(cfg.Board.Alphabet)
}

func loadBoardArg(args []string, cfg *config.Config, r *rng.Source) (board.Board, error) {
	if len(args) == 0 {
		a, err := parseAlphabet(cfg)
		if err != nil {
			return board.Board{}, err
		}
		return generate.Random(cfg.Board.Width, cfg.Board.Height, cfg.Board.Density, a, r), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return board.Board{}, err
	}
	b := board.Decode(string(data))
	if err := b.Validate(); err != nil {
		return board.Board{}, err
	}
	return b, nil
}

func emitBoard(b board.Board) error {
	if outFile != "" {
		return os.WriteFile(outFile, []byte(board.Encode(b)), 0644)
	}
	fmt.Println(board.Encode(b))
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	a, err := parseAlphabet(cfg)
	if err != nil {
		return err
	}
	r := rng.New(cfg.Seed)
	o, err := buildOracle(cfg, r)
	if err != nil {
		return err
	}

	sched := scheduler.New(oracle.NewAdapter(o), scheduler.Config{
		Width:       cfg.Board.Width,
		Height:      cfg.Board.Height,
		Density:     cfg.Board.Density,
		Alphabet:    a,
		Interval:    cfg.Animation.Interval.Std(),
		CallTimeout: cfg.Animation.CallTimeout.Std(),
	}, r)

	m := tui.NewModel(sched, a, cfg.Animation.Interval.Std(), r)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	r := rng.New(cfg.Seed)
	o, err := buildOracle(cfg, r)
	if err != nil {
		return err
	}
	adapter := oracle.NewAdapter(o)

	b, err := loadBoardArg(args, cfg, r)
	if err != nil {
		return err
	}

	start := time.Now()
	bar := pb.StartNew(generations)
	for i := 0; i < generations; i++ {
		next, err := adapter.Advance(context.Background(), b)
		if err != nil {
			bar.Finish()
			return err
		}
		bar.Increment()
		if next.Equal(b) {
			b = next
			bar.Finish()
			fmt.Printf("stabilized after %d generations\n", i+1)
			if emitErr := emitBoard(b); emitErr != nil {
				return emitErr
			}
			return nil
		}
		b = next
	}
	bar.Finish()

	fmt.Printf("ran %d generations in %v, population %d\n",
		generations, time.Since(start).Round(time.Millisecond), b.Population())
	return emitBoard(b)
}

func runStep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	r := rng.New(cfg.Seed)
	o, err := buildOracle(cfg, r)
	if err != nil {
		return err
	}
	adapter := oracle.NewAdapter(o)

	b, err := loadBoardArg(args, cfg, r)
	if err != nil {
		return err
	}

	var spinner *wow.Wow
	if cfg.Oracle.Mode == "remote" {
		spinner = wow.New(os.Stderr, spin.Get(spin.Dots), " advancing")
		spinner.Start()
	}
	next, err := adapter.Advance(context.Background(), b)
	if spinner != nil {
		spinner.Stop()
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		return err
	}
	return emitBoard(next)
}

func runRandom(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	a, err := parseAlphabet(cfg)
	if err != nil {
		return err
	}
	b := generate.Random(cfg.Board.Width, cfg.Board.Height, cfg.Board.Density, a, rng.New(cfg.Seed))
	return emitBoard(b)
}

func runPlace(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p, ok := pattern.Lookup(args[0])
	if !ok {
		return fmt.Errorf("unknown pattern %q (see: lifegrid patterns)", args[0])
	}
	a, err := parseAlphabet(cfg)
	if err != nil {
		return err
	}
	r := rng.New(cfg.Seed)

	var b board.Board
	if len(args) == 2 {
		b, err = loadBoardArg(args[1:], cfg, r)
		if err != nil {
			return err
		}
	} else {
		b = board.New(cfg.Board.Width, cfg.Board.Height)
	}

	placed, at, err := pattern.Place(p, b, a, r)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "placed %s at (%d,%d) rotation %d marker %c\n",
		p.Name, at.X, at.Y, at.Rotation, at.Marker)
	return emitBoard(placed)
}

func listPatterns(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSIZE\tCELLS")
	for _, p := range pattern.Library() {
		fmt.Fprintf(w, "%s\t%dx%d\t%d\n", p.Name, p.Width(), p.Height(), p.Cells())
	}
	return w.Flush()
}

func runPlot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	r := rng.New(cfg.Seed)
	o, err := buildOracle(cfg, r)
	if err != nil {
		return err
	}
	adapter := oracle.NewAdapter(o)

	b, err := loadBoardArg(args, cfg, r)
	if err != nil {
		return err
	}

	history := make([]float64, 0, generations+1)
	history = append(history, float64(b.Population()))
	for i := 0; i < generations; i++ {
		next, err := adapter.Advance(context.Background(), b)
		if err != nil {
			return err
		}
		if next.Equal(b) {
			break
		}
		b = next
		history = append(history, float64(b.Population()))
	}

	graph := asciigraph.Plot(history,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("population vs generation"),
	)
	fmt.Println(graph)
	fmt.Printf("\nfinal population: %d after %d generations\n", b.Population(), len(history)-1)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	g := oracle.NewGenerator(oracle.NewEngine(rng.New(cfg.Seed)), cfg.Oracle.Contract)
	fmt.Printf("generation service listening on %s\n", addr)
	return oracle.ListenAndServe(addr, g)
}
