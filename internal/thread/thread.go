// Package thread 把扁平的评论行组装成评论树，并按调用者身份过滤未发布的评论。
// 包内函数都是纯函数：不修改入参，没有共享状态，可以并发调用。
package thread

import (
	"fmt"
	"strings"

	"Lumen_Blog/internal/model"
)

// Capability 调用者能看到什么：Public只看已发布，Moderator看全部
type Capability int

const (
	Public Capability = iota
	Moderator
)

func (c Capability) String() string {
	if c == Moderator {
		return "moderator"
	}
	return "public"
}

// Order 同一层内的排序方向，平局永远按ID升序
type Order int

const (
	OrderAsc Order = iota
	OrderDesc
)

func (o Order) String() string {
	if o == OrderDesc {
		return "desc"
	}
	return "asc"
}

// ParseOrder 空字符串按默认的asc处理
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "oldest":
		return OrderAsc, nil
	case "desc", "newest":
		return OrderDesc, nil
	}
	return OrderAsc, fmt.Errorf("unknown order %q", s)
}

// ThreadedComment 一条评论加上它的直接回复，回复本身也是ThreadedComment
type ThreadedComment struct {
	model.Comment
	Replies []*ThreadedComment
}

// Anomaly 读取时发现的脏数据：ParentID指向的评论在这个主题下根本不存在
type Anomaly struct {
	CommentID uint64
	ParentID  uint64
}

type Forest struct {
	Roots []*ThreadedComment
	// 树中全部节点数（含所有层级的回复）
	TotalCount int
	// 因为父评论不存在而被提升为根的评论
	Anomalies []Anomaly
}

// Walk 先序遍历整片森林，fn返回false时停止。用显式栈实现，深链不会爆栈
func Walk(roots []*ThreadedComment, fn func(node, parent *ThreadedComment, depth int) bool) {
	type frame struct {
		node   *ThreadedComment
		parent *ThreadedComment
		depth  int
	}
	stack := make([]frame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{node: roots[i]})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.node, f.parent, f.depth) {
			return
		}
		for i := len(f.node.Replies) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: f.node.Replies[i], parent: f.node, depth: f.depth + 1})
		}
	}
}
