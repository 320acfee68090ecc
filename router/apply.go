package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rehiy/chat-led/agent"
	"github.com/rehiy/chat-led/device"
	"github.com/rehiy/chat-led/handler"
)

// Apply 注册全部路由
func Apply(a *agent.DispatchAgent, serial *device.SerialService, commands *device.CommandSet) *mux.Router {
	r := mux.NewRouter()

	// API 路由
	api := r.PathPrefix("/api").Subrouter()
	ChatRegister(api, a)
	DeviceRegister(api, serial, commands, a)
	DispatchdbRegister(api)
	WebhookRegister(api)
	SettingRegister(api)

	// WebSocket
	WebSocketRegister(r)

	// 静态文件服务
	StaticServer(r)

	return r
}

func ChatRegister(r *mux.Router, a *agent.DispatchAgent) {
	ch := handler.NewChatHandler(a)

	// 对话入口
	r.HandleFunc("/chat", ch.HandleChat).Methods("POST")
}

func DeviceRegister(r *mux.Router, serial *device.SerialService, commands *device.CommandSet, a *agent.DispatchAgent) {
	dh := handler.NewDeviceHandler(serial, commands, a)

	// 设备信息与直接命令
	r.HandleFunc("/device/info", dh.GetDeviceInfo).Methods("GET")
	r.HandleFunc("/device/command", dh.SendCommand).Methods("POST")
}

func DispatchdbRegister(r *mux.Router) {
	dh := handler.NewDispatchdbHandler()

	// 调度记录存储管理
	r.HandleFunc("/dispatchdb/list", dh.ListDispatch).Methods("GET")
	r.HandleFunc("/dispatchdb/delete", dh.DeleteDispatchBatch).Methods("POST")
}

func WebhookRegister(r *mux.Router) {
	wh := handler.NewWebhookHandler()

	// Webhook配置管理
	r.HandleFunc("/webhook", wh.CreateWebhook).Methods("POST")
	r.HandleFunc("/webhook/list", wh.ListWebhooks).Methods("GET")
	r.HandleFunc("/webhook/get", wh.GetWebhook).Methods("GET")
	r.HandleFunc("/webhook/update", wh.UpdateWebhook).Methods("PUT")
	r.HandleFunc("/webhook/delete", wh.DeleteWebhook).Methods("DELETE")
	r.HandleFunc("/webhook/test", wh.TestWebhook).Methods("POST")
}

func SettingRegister(r *mux.Router) {
	sh := handler.NewSettingHandler()

	// 设置管理
	r.HandleFunc("/settings", sh.GetSettings).Methods("GET")
	r.HandleFunc("/settings/dispatchdb", sh.UpdateDispatchdbSettings).Methods("PUT")
	r.HandleFunc("/settings/webhook", sh.UpdateWebhookSettings).Methods("PUT")
}

func WebSocketRegister(r *mux.Router) {
	ws := handler.NewWebSocketHandler()

	r.HandleFunc("/ws/events", ws.HandleWebSocket)
}

func StaticServer(r *mux.Router) {
	fs := http.FileServer(http.Dir("./webview"))
	r.PathPrefix("/").Handler(fs)
}
