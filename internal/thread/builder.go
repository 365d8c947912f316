package thread

import (
	"sort"

	"Lumen_Blog/internal/apperr"
	"Lumen_Blog/internal/model"
)

const opBuild = "thread.build"

// Build 把同一主题下的扁平评论组装成森林：
// 1、一遍建立 id -> 节点 的索引，同时校验重复ID和自引用 2、按(CreatedAt, ID)整体排一次序
// 3、按排好的顺序把每个节点挂到父节点的Replies上，这样每一层天然有序 4、从根出发数一遍可达节点，数不齐说明有环
// 父评论不在输入里的节点会被当成根，并记到Anomalies里
func Build(comments []model.Comment, order Order) (*Forest, error) {
	nodes := make(map[uint64]*ThreadedComment, len(comments))
	sorted := make([]*ThreadedComment, 0, len(comments))

	for i := range comments {
		c := comments[i]
		if c.ParentID != nil {
			if *c.ParentID == c.ID {
				return nil, apperr.Validation(opBuild, "comment %d replies to itself", c.ID)
			}
			// 拷贝一份指针指向的值，输出不能和输入共享内存
			pid := *c.ParentID
			c.ParentID = &pid
		}
		if c.AuthorEmail != nil {
			email := *c.AuthorEmail
			c.AuthorEmail = &email
		}
		if _, dup := nodes[c.ID]; dup {
			return nil, apperr.Validation(opBuild, "duplicate comment id %d", c.ID)
		}
		node := &ThreadedComment{Comment: c, Replies: []*ThreadedComment{}}
		nodes[c.ID] = node
		sorted = append(sorted, node)
	}

	sort.Slice(sorted, func(i, j int) bool {
		return less(&sorted[i].Comment, &sorted[j].Comment, order)
	})

	forest := &Forest{
		Roots:     []*ThreadedComment{},
		Anomalies: []Anomaly{},
	}
	for _, node := range sorted {
		if node.ParentID == nil {
			forest.Roots = append(forest.Roots, node)
			continue
		}
		parent, ok := nodes[*node.ParentID]
		if !ok {
			forest.Roots = append(forest.Roots, node)
			forest.Anomalies = append(forest.Anomalies, Anomaly{CommentID: node.ID, ParentID: *node.ParentID})
			continue
		}
		if parent.SubjectID != node.SubjectID {
			return nil, apperr.Validation(opBuild, "comment %d (post %d) replies to comment %d of post %d",
				node.ID, node.SubjectID, parent.ID, parent.SubjectID)
		}
		parent.Replies = append(parent.Replies, node)
	}

	reached := 0
	Walk(forest.Roots, func(_, _ *ThreadedComment, _ int) bool {
		reached++
		return true
	})
	if reached != len(sorted) {
		return nil, apperr.Validation(opBuild, "%d comments form a reply cycle", len(sorted)-reached)
	}
	forest.TotalCount = reached

	return forest, nil
}

// less 时间方向由order决定，时间相同一律按ID升序
func less(a, b *model.Comment, order Order) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		if order == OrderDesc {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
