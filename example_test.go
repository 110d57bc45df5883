package famalloc_test

import (
	"errors"
	"fmt"
	"log"

	"github.com/hupe1980/famalloc"
	"github.com/hupe1980/famalloc/atomics"
	"github.com/hupe1980/famalloc/idalloc"
)

// Example_claimAndRelease demonstrates claiming allocation units and giving them back.
func Example_claimAndRelease() {
	bm, err := famalloc.New(atomics.NewLocal(), atomics.NewBuffer(4))
	if err != nil {
		log.Fatal(err)
	}
	defer bm.Teardown()

	first, _ := bm.FindAndReserve(false, 0)
	second, _ := bm.FindAndReserve(false, 0)
	fmt.Println("claimed", first, second)

	// Releasing is a reservation in the other direction.
	if err := bm.Reserve(true, first); err != nil {
		log.Fatal(err)
	}

	next, _ := bm.FindAndReserve(false, 0)
	fmt.Println("reused", next)
	// Output:
	// claimed 0 1
	// reused 0
}

// Example_conflict demonstrates the error returned when a bit was already taken.
func Example_conflict() {
	bm, err := famalloc.New(atomics.NewLocal(), atomics.NewBuffer(1))
	if err != nil {
		log.Fatal(err)
	}
	defer bm.Teardown()

	_ = bm.Reserve(false, 5)
	err = bm.Reserve(false, 5)

	fmt.Println(errors.Is(err, famalloc.ErrConflict))
	// Output: true
}

// Example_metrics demonstrates collecting reservation statistics.
func Example_metrics() {
	metrics := &famalloc.BasicMetricsCollector{}

	bm, err := famalloc.New(atomics.NewLocal(), atomics.NewBuffer(1),
		famalloc.WithMetricsCollector(metrics),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer bm.Teardown()

	_ = bm.Reserve(false, 0)
	_ = bm.Reserve(false, 0)

	stats := metrics.GetStats()
	fmt.Printf("reservations=%d conflicts=%d\n", stats.ReserveCount, stats.ReserveConflicts)
	// Output: reservations=2 conflicts=1
}

// Example_idPool demonstrates handing out region IDs above a reserved range.
func Example_idPool() {
	bm, err := famalloc.New(atomics.NewLocal(), atomics.NewBuffer(2))
	if err != nil {
		log.Fatal(err)
	}
	defer bm.Teardown()

	pool, err := idalloc.New(bm)
	if err != nil {
		log.Fatal(err)
	}

	id, _ := pool.Acquire()
	fmt.Println("region id", id)

	_ = pool.Release(id)
	fmt.Println("in use", pool.InUse())
	// Output:
	// region id 21
	// in use 0
}
