package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rehiy/chat-led/device"
)

// render 把处理结果渲染成回复文本。
// 成功结果可交给推理后端口语化改写，改写失败退回模板。
func (a *DispatchAgent) render(ctx context.Context, out *Outcome) string {
	text := renderTemplate(out)
	if out.Status == StatusSuccess && a.phraser != nil {
		if phrased, err := a.phraser.Phrase(ctx, out.Utterance, text); err == nil && strings.TrimSpace(phrased) != "" {
			return strings.TrimSpace(phrased)
		}
	}
	return text
}

// renderTemplate 按结果状态生成模板回复
func renderTemplate(out *Outcome) string {
	switch out.Status {
	case StatusSuccess:
		return renderSuccess(out)
	case StatusNoMatch:
		return "Sorry, I could not map that to a device action. " +
			"Try asking me to turn the LED on or off, or to check the device status."
	case StatusAssistantUnavailable:
		return "The language backend is unreachable right now, so your request was not sent to the device. " +
			"Please check that the model server is running and try again."
	case StatusTimeout:
		return "The device did not reply in time, even after a retry. " +
			"It may be busy or unresponsive."
	case StatusTransportError:
		return "There is a problem with the serial connection to the device. " +
			"Please check the cable and port, then try again."
	case StatusMalformedReply:
		return fmt.Sprintf("The device replied with something unexpected: %q. "+
			"The command may not have taken effect.", out.RawReply)
	default:
		return "Something went wrong while handling your request."
	}
}

func renderSuccess(out *Outcome) string {
	name := ""
	if out.Command != nil {
		name = out.Command.Name
	}
	switch name {
	case device.CmdTurnOn:
		return fmt.Sprintf("Done, the LED is now on. Device replied: %s", out.RawReply)
	case device.CmdTurnOff:
		return fmt.Sprintf("Done, the LED is now off. Device replied: %s", out.RawReply)
	case device.CmdStatus:
		return fmt.Sprintf("Device status: %s", out.RawReply)
	default:
		return fmt.Sprintf("Command completed. Device replied: %s", out.RawReply)
	}
}
