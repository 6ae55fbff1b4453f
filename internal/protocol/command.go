package protocol

import "strings"

// Kind 命令类别
type Kind int

const (
	KindChat Kind = iota
	KindPing
	KindJoin
	KindLeave
	KindWho
)

var kindNames = map[Kind]string{
	KindChat:  "chat",
	KindPing:  "ping",
	KindJoin:  "join",
	KindLeave: "leave",
	KindWho:   "who",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Keywords 控制命令关键字，顺序即匹配顺序
var Keywords = []struct {
	Word string
	Kind Kind
}{
	{"/ping", KindPing},
	{"/join", KindJoin},
	{"/leave", KindLeave},
	{"/who", KindWho},
}

// MatchKeyword 判断 payload 是否以完整关键字开头，且关键字后是结尾或空白
func MatchKeyword(payload, word string) bool {
	if !strings.HasPrefix(payload, word) {
		return false
	}
	rest := payload[len(word):]
	if rest == "" {
		return true
	}
	switch rest[0] {
	case ' ', '\t', '\r', '\n':
		return true
	}
	return false
}

// Classify 区分控制命令与普通聊天，大小写敏感
func Classify(payload string) Kind {
	for _, kw := range Keywords {
		if MatchKeyword(payload, kw.Word) {
			return kw.Kind
		}
	}
	return KindChat
}

// 服务端回复文本
const (
	ReplyPing         = "SERVER: server is currently running..."
	ReplyJoined       = "SERVER: successfully joined the chatroom, start typing!"
	ReplyNameTaken    = "SERVER ERROR: A user with this username already exists!"
	ReplyLeft         = "SERVER: leaving the chat room.."
	ReplyMalformed    = "SERVER ERROR: malformed frame"
	ReplyTooLong      = "SERVER ERROR: message too long"
	chatLineSeparator = ": "
)

// ChatLine 组装广播文本 "{name}: {text}"
func ChatLine(name, text string) string { return name + chatLineSeparator + text }

// MaxTextLen name 发送的聊天内容上限，保证 ChatLine 能放进一个下发块
func MaxTextLen(name string) int { return MaxLineLen - len(name) - len(chatLineSeparator) }
