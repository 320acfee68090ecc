package device

import (
	"fmt"
	"os"
	"strings"
)

// Command 设备支持的一条命令及其应答校验规则。
// 命令集合是封闭的，扩展需要新增定义而不是运行时注册。
type Command struct {
	Name        string // 命令标识
	Tool        string // 暴露给推理后端的工具名称
	WireText    string // 串口发送文本
	Description string // 供意图识别使用的自然语言描述
	accept      []string
	exclusive   bool // accept 中的标记互斥，同时命中视为非法应答
}

// ValidateReply 校验设备应答是否符合命令的应答文法
func (c Command) ValidateReply(raw string) bool {
	hits := 0
	for _, token := range c.accept {
		if strings.Contains(raw, token) {
			hits++
		}
	}
	if c.exclusive {
		return hits == 1
	}
	return hits > 0
}

// ReplyGrammar 设备应答文法。
// 具体应答字符串不是固定的线协议，按固件文档可配置。
type ReplyGrammar struct {
	OnConfirm  string // 开灯确认标记
	OffConfirm string // 关灯确认标记
	StatusOn   string // 状态应答中的开启标记
	StatusOff  string // 状态应答中的关闭标记
}

// DefaultGrammar 返回应答文法，环境变量优先于固件默认值
func DefaultGrammar() ReplyGrammar {
	return ReplyGrammar{
		OnConfirm:  envOr("REPLY_ON", defaultReplyOn),
		OffConfirm: envOr("REPLY_OFF", defaultReplyOff),
		StatusOn:   envOr("REPLY_STATUS_ON", defaultReplyStatusOn),
		StatusOff:  envOr("REPLY_STATUS_OFF", defaultReplyStatusOff),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// CommandSet 封闭的命令词汇表，纯查询校验，不做任何 I/O
type CommandSet struct {
	commands []Command
}

// NewCommandSet 按给定应答文法构建命令集合
func NewCommandSet(g ReplyGrammar) *CommandSet {
	return &CommandSet{
		commands: []Command{
			{
				Name:        CmdTurnOn,
				Tool:        "turn_led_on",
				WireText:    wireTurnOn,
				Description: "Turn the LED on",
				accept:      []string{g.OnConfirm},
			},
			{
				Name:        CmdTurnOff,
				Tool:        "turn_led_off",
				WireText:    wireTurnOff,
				Description: "Turn the LED off",
				accept:      []string{g.OffConfirm},
			},
			{
				Name:        CmdStatus,
				Tool:        "get_device_status",
				WireText:    wireStatus,
				Description: "Get the current status of the device",
				accept:      []string{g.StatusOn, g.StatusOff},
				exclusive:   true,
			},
		},
	}
}

// ResolveByName 根据命令名称查找命令
func (s *CommandSet) ResolveByName(name string) (Command, error) {
	for _, cmd := range s.commands {
		if cmd.Name == name {
			return cmd, nil
		}
	}
	return Command{}, fmt.Errorf("%w: %s", ErrCommandNotFound, name)
}

// ResolveByTool 根据工具名称查找命令
func (s *CommandSet) ResolveByTool(tool string) (Command, error) {
	for _, cmd := range s.commands {
		if cmd.Tool == tool {
			return cmd, nil
		}
	}
	return Command{}, fmt.Errorf("%w: %s", ErrCommandNotFound, tool)
}

// All 返回全部命令
func (s *CommandSet) All() []Command {
	out := make([]Command, len(s.commands))
	copy(out, s.commands)
	return out
}

// Names 返回全部命令名称
func (s *CommandSet) Names() []string {
	names := make([]string, 0, len(s.commands))
	for _, cmd := range s.commands {
		names = append(names, cmd.Name)
	}
	return names
}
