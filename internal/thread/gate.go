package thread

import "Lumen_Blog/internal/model"

// Filter 审核闸门：Moderator原样拿到全部评论，Public只拿到已发布的。返回的是新切片
func Filter(comments []model.Comment, capability Capability) []model.Comment {
	if capability == Moderator {
		out := make([]model.Comment, len(comments))
		copy(out, comments)
		return out
	}
	out := make([]model.Comment, 0, len(comments))
	for i := range comments {
		if comments[i].Published {
			out = append(out, comments[i])
		}
	}
	return out
}

// Assemble 先过闸门再建树。
// 父评论被闸门藏起来的回复会变成新的根，这是预期行为，不算Anomaly；
// 只有父评论在全部行里都找不到的才保留为Anomaly
func Assemble(rows []model.Comment, capability Capability, order Order) (*Forest, error) {
	visible := Filter(rows, capability)
	forest, err := Build(visible, order)
	if err != nil {
		return nil, err
	}
	if len(forest.Anomalies) == 0 || len(visible) == len(rows) {
		return forest, nil
	}

	known := make(map[uint64]struct{}, len(rows))
	for i := range rows {
		known[rows[i].ID] = struct{}{}
	}
	kept := make([]Anomaly, 0, len(forest.Anomalies))
	for _, a := range forest.Anomalies {
		if _, hidden := known[a.ParentID]; !hidden {
			kept = append(kept, a)
		}
	}
	forest.Anomalies = kept
	return forest, nil
}
