package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/rl1809/car-inventory/internal/adapter/storage"
	"github.com/rl1809/car-inventory/internal/core/domain"
	"github.com/rl1809/car-inventory/internal/core/service"
)

const queueSize = 100

var (
	totalRequests int
	distinctIDs   int
)

var rootCmd = &cobra.Command{
	Use:   "stress_test",
	Short: "Race concurrent creates against an in-process inventory",
	RunE: func(cmd *cobra.Command, args []string) error {
		if totalRequests <= 0 || distinctIDs <= 0 {
			return errors.New("requests and ids must be positive")
		}
		if !run(cmd.Context()) {
			os.Exit(1)
		}
		return nil
	},
}

func main() {
	rootCmd.Flags().IntVar(&totalRequests, "requests", 500, "Number of concurrent create requests")
	rootCmd.Flags().IntVar(&distinctIDs, "ids", 20, "Number of distinct item ids the requests race on")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func run(ctx context.Context) bool {
	store := storage.NewMemoryAdapter(domain.SeedItems())
	seeded := store.Len()
	inventory := service.NewInventoryService(store, queueSize, nil)

	// Drain the event queue in background
	var drained atomic.Int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range inventory.GetEventQueue() {
			drained.Add(1)
		}
	}()

	// Counters
	var successCount atomic.Int32
	var conflictCount atomic.Int32
	var failCount atomic.Int32

	// Spawn concurrent requests
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			id := 1000 + n%distinctIDs
			item := domain.Item{Type: "Sedan", Price: "10k", Brand: fmt.Sprintf("brand-%d", n)}
			_, err := inventory.CreateItem(ctx, id, item)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, service.ErrItemExists):
				conflictCount.Add(1)
			default:
				failCount.Add(1)
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	inventory.Close()
	<-done

	// Results
	success := successCount.Load()
	conflicts := conflictCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Distinct IDs:     %d\n", distinctIDs)
	fmt.Printf("Created:          %d\n", success)
	fmt.Printf("Conflicts:        %d\n", conflicts)
	fmt.Printf("Other Failures:   %d\n", failCount.Load())
	fmt.Printf("Events Drained:   %d (dropped %d)\n", drained.Load(), inventory.DroppedEvents())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	expected := int32(min(distinctIDs, totalRequests))
	pass := true

	// Assertions
	if success == expected && conflicts == int32(totalRequests)-expected {
		fmt.Printf("PASS: exactly %d creates succeeded\n", expected)
	} else {
		fmt.Printf("FAIL: expected %d creates and %d conflicts, got %d/%d\n",
			expected, int32(totalRequests)-expected, success, conflicts)
		pass = false
	}

	if got := store.Len(); got == seeded+int(expected) {
		fmt.Printf("PASS: store holds %d items\n", got)
	} else {
		fmt.Printf("FAIL: expected %d items, got %d\n", seeded+int(expected), got)
		pass = false
	}

	return pass
}
