package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

type LogStats struct {
	TotalErrors       int
	LoginSuccess      int
	LoginFailures     int
	WebhookRejections int
	WebhookProcessed  int
	GatewayFailures   int
	JobFailures       int
	DeadJobs          int
	BalanceConflicts  int
	UserActivities    map[string]int
	ErrorPatterns     map[string]int
}

func main() {
	// File names carry the date the logger opened them with
	today := time.Now().Format("2006-01-02")
	logDir := "./logs"
	if dir := os.Getenv("LOG_DIR"); dir != "" {
		logDir = dir
	}

	stats := &LogStats{
		UserActivities: make(map[string]int),
		ErrorPatterns:  make(map[string]int),
	}

	analyzeErrorLogs(filepath.Join(logDir, fmt.Sprintf("error-%s.log", today)), stats)
	analyzeInfoLogs(filepath.Join(logDir, fmt.Sprintf("info-%s.log", today)), stats)

	printReport(stats)
}

func analyzeErrorLogs(logFile string, stats *LogStats) {
	file, err := os.Open(logFile)
	if err != nil {
		fmt.Printf("Error opening log file %s: %v\n", logFile, err)
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		stats.TotalErrors++

		if strings.Contains(line, "Invalid password for user") || strings.Contains(line, "User not found for email") {
			stats.LoginFailures++
			extractUserActivity(line, stats)
		}

		if strings.Contains(line, "Webhook rejected") {
			stats.WebhookRejections++
		}

		if strings.Contains(line, "Gateway request failed") || strings.Contains(line, "Gateway rejected") {
			stats.GatewayFailures++
		}

		if strings.Contains(line, "Job") && strings.Contains(line, "failed") {
			stats.JobFailures++
		}
		if strings.Contains(line, "failed permanently") {
			stats.DeadJobs++
		}

		extractErrorPattern(line, stats)
	}
}

func analyzeInfoLogs(logFile string, stats *LogStats) {
	file, err := os.Open(logFile)
	if err != nil {
		fmt.Printf("Error opening log file %s: %v\n", logFile, err)
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()

		if strings.Contains(line, "Login successful") {
			stats.LoginSuccess++
			extractUserActivity(line, stats)
		}

		if strings.Contains(line, "Webhook event") && strings.Contains(line, "queued") {
			stats.WebhookProcessed++
		}

		if strings.Contains(line, "Concurrent update on gift card") {
			stats.BalanceConflicts++
		}
	}
}

func extractUserActivity(line string, stats *LogStats) {
	emailRegex := regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	if email := emailRegex.FindString(line); email != "" {
		stats.UserActivities[email]++
	}
}

func extractErrorPattern(line string, stats *LogStats) {
	parts := strings.Split(line, ":")
	if len(parts) > 1 {
		errorMsg := strings.TrimSpace(parts[1])
		stats.ErrorPatterns[errorMsg]++
	}
}

func printReport(stats *LogStats) {
	fmt.Println("\n=== Log Analysis Report ===")
	fmt.Println("Generated:", time.Now().Format("2006-01-02 15:04:05"))

	fmt.Println("\n1. Authentication:")
	fmt.Printf("   Successful Logins: %d\n", stats.LoginSuccess)
	fmt.Printf("   Failed Logins: %d\n", stats.LoginFailures)

	fmt.Println("\n2. Payment Gateway:")
	fmt.Printf("   Webhook Events Queued: %d\n", stats.WebhookProcessed)
	fmt.Printf("   Webhook Rejections: %d\n", stats.WebhookRejections)
	fmt.Printf("   Gateway Failures: %d\n", stats.GatewayFailures)

	fmt.Println("\n3. Background Jobs:")
	fmt.Printf("   Failed Attempts: %d\n", stats.JobFailures)
	fmt.Printf("   Dead Jobs: %d\n", stats.DeadJobs)

	fmt.Println("\n4. Gift Card Ledger:")
	fmt.Printf("   Balance Update Conflicts: %d\n", stats.BalanceConflicts)

	fmt.Println("\n5. Error Statistics:")
	fmt.Printf("   Total Errors: %d\n", stats.TotalErrors)

	fmt.Println("\n6. Most Active Users:")
	printTopUsers(stats.UserActivities, 5)

	fmt.Println("\n7. Most Common Errors:")
	printTopErrors(stats.ErrorPatterns, 5)
}

func printTopUsers(users map[string]int, limit int) {
	type userActivity struct {
		email string
		count int
	}

	var activities []userActivity
	for email, count := range users {
		activities = append(activities, userActivity{email, count})
	}

	sort.Slice(activities, func(i, j int) bool {
		return activities[i].count > activities[j].count
	})

	for i, activity := range activities {
		if i >= limit {
			break
		}
		fmt.Printf("   %s: %d activities\n", activity.email, activity.count)
	}
}

func printTopErrors(errors map[string]int, limit int) {
	type errorCount struct {
		message string
		count   int
	}

	var errorList []errorCount
	for err, count := range errors {
		errorList = append(errorList, errorCount{err, count})
	}

	sort.Slice(errorList, func(i, j int) bool {
		return errorList[i].count > errorList[j].count
	})

	for i, err := range errorList {
		if i >= limit {
			break
		}
		fmt.Printf("   %s: %d occurrences\n", err.message, err.count)
	}
}
