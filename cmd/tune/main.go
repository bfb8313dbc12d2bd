package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/gonum/optimize"

	"github.com/slava-sh/agarcup/config"
)

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	ticks := flag.Int("ticks", 2000, "Rollout duration in ticks")
	pellets := flag.Int("pellets", 200, "Pellet count in the sparring arena")
	botMass := flag.Float64("mass", 40, "Starting bot mass")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()

	params := NewParamVector()

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	evaluator := NewFitnessEvaluator(params, *ticks, *pellets, *botMass, evalSeeds, baseCfg)

	dim := params.Dim()
	initX := params.Normalize(params.DefaultVector())

	logPath := filepath.Join(*outputDir, "tune_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	logWriter := csv.NewWriter(logFile)
	defer logWriter.Flush()

	header := []string{"eval", "fitness"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	logWriter.Write(header)

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Denormalize(x)
			fitness := evaluator.Evaluate(raw)

			row := []string{
				strconv.Itoa(evaluator.Evals()),
				strconv.FormatFloat(fitness, 'f', 3, 64),
			}
			for _, v := range raw {
				row = append(row, strconv.FormatFloat(v, 'f', 4, 64))
			}
			logWriter.Write(row)
			logWriter.Flush()

			return fitness
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // Sequential evaluation
	}

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}

	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Fatalf("optimization failed: %v", err)
	}

	best := params.Denormalize(result.X)
	fmt.Printf("best fitness: %.3f\n", result.F)
	for i, spec := range params.Specs {
		fmt.Printf("  %-22s %.4f\n", spec.Name, best[i])
	}

	bestCfg := params.Apply(baseCfg, best)
	bestPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(bestPath); err != nil {
		log.Fatalf("failed to write best config: %v", err)
	}
	fmt.Printf("wrote %s\n", bestPath)
}
