package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rehiy/chat-led/agent"
	"github.com/rehiy/chat-led/database"
	"github.com/rehiy/chat-led/device"
	"github.com/rehiy/chat-led/events"
	"github.com/rehiy/chat-led/llm"
	"github.com/rehiy/chat-led/router"
	"github.com/rehiy/chat-led/service"
)

const (
	listenPort  = "8080"
	serialPort  = "/dev/ttyUSB0"
	ollamaModel = "gpt-oss:20b"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = listenPort
	}

	// 初始化数据库
	if err := database.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// 打开串口会话，失败是致命的：没有会话任何命令都不可能成功
	broadcast := events.GetStream().Publish
	commands := device.NewCommandSet(device.DefaultGrammar())
	serial, err := device.Open(envOr("SERIAL_PORT", serialPort), envInt("BAUD_RATE", device.DefaultBaudRate), envSeconds("SERIAL_TIMEOUT", device.DefaultTimeout), broadcast)
	if err != nil {
		log.Fatalf("Failed to open serial port: %v", err)
	}
	defer serial.Close()

	// 启动自检：设备必须应答一次状态查询
	if status, err := commands.ResolveByName(device.CmdStatus); err == nil {
		if err := serial.Check(status); err != nil {
			log.Fatalf("Device check failed: %v", err)
		}
	}

	// 组装调度器
	client := llm.NewClient(os.Getenv("OLLAMA_HOST"), envOr("OLLAMA_MODEL", ollamaModel), 0)
	resolver := agent.NewIntentResolver(client, commands)
	recorder := service.NewDispatchRecorder()
	dispatcher := agent.NewDispatchAgent(serial, resolver,
		agent.WithPhraser(client),
		agent.WithBroadcast(broadcast),
		agent.WithOutcomeHandler(recorder.Handle),
	)

	// 启动服务器
	go func() {
		log.Printf("Server starting on :%s", port)
		log.Fatal(http.ListenAndServe(":"+port, router.Apply(dispatcher, serial, commands)))
	}()

	// 交互循环
	replDone := make(chan struct{})
	go runREPL(dispatcher, replDone)

	// 等待中断信号或交互退出
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
	case <-replDone:
	}

	log.Println("Shutting down...")
}

// runREPL 从标准输入读取话语并打印回复，quit/exit 或 EOF 退出
func runREPL(dispatcher *agent.DispatchAgent, done chan struct{}) {
	defer close(done)

	fmt.Println("Chat-LED ready. Ask me to turn the LED on or off, or to check status.")
	fmt.Println("Type 'quit' to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}

		utterance := strings.TrimSpace(scanner.Text())
		if utterance == "" {
			continue
		}
		switch strings.ToLower(utterance) {
		case "quit", "exit", "bye":
			return
		}

		out := dispatcher.HandleUtterance(context.Background(), utterance)
		fmt.Println(out.Response)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envSeconds(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return fallback
}
