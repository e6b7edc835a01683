package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

func main() {
	server := flag.String("server", "http://localhost:3210", "Commandpost server URL")
	user := flag.String("user", "console-user", "User name for the session")
	flag.Parse()

	fmt.Println("Commandpost Console")
	fmt.Printf("Server: %s | User: %s\n", *server, *user)
	fmt.Println("Type 'exit' or 'quit' to leave. Lines starting with / are commands.")
	fmt.Println("---")

	fetchCommands(*server)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			fmt.Println("Bye!")
			return
		}
		sendCommand(*server, *user, input)
	}
}

func fetchCommands(server string) {
	resp, err := http.Get(server + "/api/commands")
	if err != nil {
		printError("Failed to fetch commands: %v", err)
		return
	}
	defer resp.Body.Close()

	var commands []struct {
		Name  string   `json:"name"`
		Desc  string   `json:"desc"`
		Usage []string `json:"usage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&commands); err != nil {
		printError("Failed to parse commands: %v", err)
		return
	}
	if len(commands) == 0 {
		fmt.Println("No commands registered yet.")
		return
	}
	fmt.Println("Available commands:")
	for _, c := range commands {
		line := "  " + c.Usage[0]
		if c.Desc != "" {
			line += " - " + c.Desc
		}
		fmt.Println(line)
	}
}

func sendCommand(server, user, content string) {
	body, _ := json.Marshal(map[string]string{
		"user_id":   user,
		"user_name": user,
		"content":   content,
	})

	client := &http.Client{Timeout: 20 * time.Second}
	resp, err := client.Post(
		server+"/api/gateway/rest/message",
		"application/json",
		bytes.NewReader(body),
	)
	if err != nil {
		printError("Request failed: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		printError("Server error (%d): %s", resp.StatusCode, strings.TrimSpace(string(data)))
		return
	}

	var msg struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		printError("Failed to parse response: %v", err)
		return
	}
	fmt.Println(msg.Content)
}

func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "\033[31m"+format+"\033[0m\n", args...)
}
