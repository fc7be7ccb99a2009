package model

// Session binds a chat to the bot message that renders its catalog view.
type Session struct {
	MsgID    int `json:"msgID"`
	ListPage int `json:"listPage"`
}
