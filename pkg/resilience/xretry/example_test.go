package xretry_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/omeyang/xlazy/pkg/resilience/xretry"
)

func ExamplePolicy_Delay() {
	p := xretry.NewPolicy(3, time.Second)

	fmt.Println(p.Delay(1), p.Delay(2))
	fmt.Println(p.Exhausted(2), p.Exhausted(3))
	// Output:
	// 1s 2s
	// false true
}

func ExampleNewPolicyRetryer() {
	r := xretry.NewPolicyRetryer(xretry.NewPolicy(3, 0))

	var attempts int
	err := r.Do(context.Background(), func(_ context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	})

	fmt.Println("error:", err)
	fmt.Println("attempts:", attempts)
	// Output:
	// error: <nil>
	// attempts: 3
}
