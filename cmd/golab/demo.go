package main

import (
	"fmt"
	"log"
	"strconv"

	"github.com/lightwave-lab/golab/instrument"
	"github.com/lightwave-lab/golab/monitoring"
	"github.com/lightwave-lab/golab/recording"
	"github.com/lightwave-lab/golab/search"
	"github.com/lightwave-lab/golab/sweep"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a sweep against a simulated current source.",
	Long: "`demo` sweeps the bias of a simulated current source, records " +
		"the response into a SQLite database, and then locates the " +
		"response peak.",
	Run: func(cmd *cobra.Command, _ []string) {
		db, _ := cmd.Flags().GetString("db")
		points, _ := cmd.Flags().GetInt("points")
		withMonitor, _ := cmd.Flags().GetBool("monitor")

		runDemo(db, points, withMonitor)
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().String("db", envOr("GOLAB_DB", ""),
		"Database path without extension; empty generates one")
	demoCmd.Flags().Int("points", 21, "Number of sweep points")
	demoCmd.Flags().Bool("monitor", false,
		"Serve sweep progress over HTTP while running")
}

func runDemo(db string, points int, withMonitor bool) {
	src := instrument.NewChannelSource(1)

	sensor := sweep.SensorFunc(func() (float64, error) {
		return simulatedResponse(src.ChannelTuning()[1]), nil
	})

	sweeper := sweep.NewSweeper("demo")

	err := sweeper.AddActuation("bias", src.ChannelActuator(1),
		linspace(0, 1, points))
	if err != nil {
		log.Fatal(err)
	}

	err = sweeper.AddMeasurement("power", sensor)
	if err != nil {
		log.Fatal(err)
	}

	rec := recording.NewRecorder(db)
	defer rec.Close()

	sweeper.AcceptHook(recording.NewRunLogger(rec))

	if withMonitor {
		m := monitoring.NewMonitor().WithPortNumber(monitorPort())
		m.RegisterSweeper(sweeper)
		m.StartServer()
	}

	result, err := sweeper.Gather()
	if err != nil {
		log.Fatalf("sweep failed: %v (kept %d points)", err, result.Len())
	}

	recording.WriteResult(rec, "demo", result)
	src.Off()

	fmt.Printf("Recorded %d points.\n", result.Len())

	peakAt, peakValue, err := search.PeakSearch(func(x float64) (float64, error) {
		return simulatedResponse(x), nil
	}, 0, 1, search.DefaultOptions())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Response peaks at bias %.4f with value %.4f.\n",
		peakAt, peakValue)
}

// simulatedResponse is a Lorentzian line centered at 0.6.
func simulatedResponse(bias float64) float64 {
	d := (bias - 0.6) / 0.05

	return 1 / (1 + d*d)
}

func linspace(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}

	domain := make([]float64, n)
	for i := range domain {
		domain[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}

	return domain
}

func monitorPort() int {
	port, err := strconv.Atoi(envOr("GOLAB_MONITOR_PORT", "0"))
	if err != nil || port <= 0 {
		return 0
	}

	return port
}
