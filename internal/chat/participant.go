package chat

// Deliverer 参与者的下发句柄，由会话持有，Registry 只借用
type Deliverer interface {
	Deliver(line string) error
}

// Participant 已 join 的聊天参与者，以 Name 为唯一标识。
// 条目不可原地修改：改名即移除后重新加入
type Participant struct {
	Name string
	Conn Deliverer
}
