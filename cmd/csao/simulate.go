package main

import (
	"context"
	"fmt"

	"csao_engine/internal/csao"
)

// RunSimulation 跑一遍典型的加购场景，方便本地验证配置和打分
func RunSimulation(o *csao.Orchestrator) {
	fmt.Println("--- CSAO (Cart Super Add-On) Simulation ---")

	scenarios := []struct {
		title string
		cart  []string
	}{
		{"Customer adds 'Biryani' to cart", []string{"Biryani"}},
		{"Customer adds 'Salan' (Side) to complete part of the meal", []string{"Biryani", "Salan"}},
		{"Customer adds 'Burger' to cart", []string{"Burger"}},
	}

	var lastLatency float64
	for i, sc := range scenarios {
		fmt.Printf("\n[Scenario %d] %s:\n", i+1, sc.title)

		resp, err := o.Recommend(context.Background(), csao.DefaultScene, sc.cart, "guest", csao.DefaultTopN)
		if err != nil {
			fmt.Printf("  recommendation failed: %v\n", err)
			continue
		}
		printRecommendations(resp)
		lastLatency = resp.LatencyMs
	}

	fmt.Println("\n[Audit] Latency Benchmark:")
	fmt.Printf("Latency for last request: %.2f ms\n", lastLatency)
	if lastLatency < 300 {
		fmt.Println("Latency check passed (< 300ms)")
	} else {
		fmt.Println("Latency check FAILED (> 300ms)")
	}
}

func printRecommendations(resp *csao.Response) {
	fmt.Printf("Latency: %.2fms\n", resp.LatencyMs)
	fmt.Println("Top Recommendations:")
	max := len(resp.Recommendations)
	if max > 5 {
		max = 5
	}
	for i, rec := range resp.Recommendations[:max] {
		fmt.Printf("  %d. %s (Score: %.2f) - Cat: %s\n", i+1, rec.Name, rec.Score, rec.Category)
	}
}
