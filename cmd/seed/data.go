package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"chat-insight-backend/internal/database"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var (
	seedUsers  = []string{"张三", "李四", "王五", "赵六", "孙七", "周八", "dali"}
	seedModels = []string{"聆境 1.1", "gpt-4", "claude-3", "星伴V1.1", "arena-model"}
	seedQA     = []struct{ query, answer string }{
		{"请帮我写一个Python函数来计算斐波那契数列", "def fibonacci(n):\n    return n if n <= 1 else fibonacci(n-1) + fibonacci(n-2)"},
		{"如何提高工作效率？", "制定明确的目标和计划，减少干扰，专注于重要任务。"},
		{"请解释一下机器学习的基本概念", "机器学习让计算机从数据中学习并做出预测，包括监督学习、无监督学习和强化学习。"},
		{"今天天气怎么样？", "抱歉，我无法获取实时天气信息。"},
	}
	seedComments = map[string][]string{
		"good":    {"回答很详细，很有帮助！", "解释得很清楚，谢谢！"},
		"bad":     {"回答不够准确", "没有解决我的问题"},
		"improve": {"回答可以更详细一些", "希望能提供更多例子"},
	}
)

type seedData struct {
	Users    []database.UserRow
	Chats    []database.ChatRow
	Feedback []database.FeedbackRow
}

type seedMessage struct {
	ID          string   `json:"id"`
	ParentID    *string  `json:"parentId"`
	ChildrenIDs []string `json:"childrenIds"`
	Role        string   `json:"role"`
	Model       string   `json:"model,omitempty"`
	Content     string   `json:"content"`
	Timestamp   int64    `json:"timestamp"`
}

type seedHistory struct {
	Messages  map[string]*seedMessage `json:"messages"`
	CurrentID string                  `json:"currentId"`
}

type seedChat struct {
	ID      string      `json:"id"`
	Title   string      `json:"title"`
	Models  []string    `json:"models"`
	History seedHistory `json:"history"`
}

// generate builds a reproducible dataset spread over the days before now.
// Some answers are regenerated and feedback alternates between the signed
// rating schema and the status list schema.
func generate(rng *rand.Rand, chatCount int, days int, now time.Time) (seedData, error) {
	var data seedData
	userIDs := make([]string, len(seedUsers))
	for i, name := range seedUsers {
		userIDs[i] = uuid.NewString()
		data.Users = append(data.Users, database.UserRow{
			ID:        userIDs[i],
			Name:      name,
			Email:     fmt.Sprintf("user%d@example.com", i),
			Role:      "user",
			CreatedAt: now.AddDate(0, 0, -days).Unix(),
		})
	}

	start := now.AddDate(0, 0, -days)
	for i := 0; i < chatCount; i++ {
		userIdx := rng.Intn(len(seedUsers))
		model := seedModels[rng.Intn(len(seedModels))]
		at := start.Add(time.Duration(rng.Int63n(int64(days) * int64(24*time.Hour))))

		chat := seedChat{
			ID:      uuid.NewString(),
			Models:  []string{model},
			History: seedHistory{Messages: map[string]*seedMessage{}},
		}
		var parent *string
		var answers []*seedMessage
		for turn := 0; turn < 1+rng.Intn(3); turn++ {
			qa := seedQA[rng.Intn(len(seedQA))]
			if turn == 0 {
				chat.Title = qa.query
			}
			ts := at.Add(time.Duration(turn) * time.Minute).Unix()
			q := &seedMessage{ID: uuid.NewString(), ParentID: parent, Role: "user", Content: qa.query, Timestamp: ts}
			chat.History.Messages[q.ID] = q
			if parent != nil {
				p := chat.History.Messages[*parent]
				p.ChildrenIDs = append(p.ChildrenIDs, q.ID)
			}

			regenerations := 1
			if rng.Intn(4) == 0 {
				regenerations = 2
			}
			var last *seedMessage
			for r := 0; r < regenerations; r++ {
				qID := q.ID
				a := &seedMessage{
					ID: uuid.NewString(), ParentID: &qID, Role: "assistant", Model: model,
					Content: qa.answer, Timestamp: ts + int64(5+r*10),
				}
				chat.History.Messages[a.ID] = a
				q.ChildrenIDs = append(q.ChildrenIDs, a.ID)
				last = a
			}
			answers = append(answers, last)
			parent = &last.ID
			chat.History.CurrentID = last.ID
		}

		blob, err := json.Marshal(chat)
		if err != nil {
			return seedData{}, err
		}
		data.Chats = append(data.Chats, database.ChatRow{
			ID:        chat.ID,
			UserID:    userIDs[userIdx],
			Title:     chat.Title,
			Chat:      datatypes.JSON(blob),
			Meta:      datatypes.JSON(`{"tags":["seed"]}`),
			CreatedAt: at.Unix(),
			UpdatedAt: at.Add(5 * time.Minute).Unix(),
		})

		for _, answer := range answers {
			if rng.Intn(2) == 0 {
				continue
			}
			fb, err := feedbackFor(rng, userIDs[userIdx], chat, answer)
			if err != nil {
				return seedData{}, err
			}
			data.Feedback = append(data.Feedback, fb)
		}
	}
	return data, nil
}

func feedbackFor(rng *rand.Rand, userID string, chat seedChat, answer *seedMessage) (database.FeedbackRow, error) {
	payload := map[string]interface{}{}
	kind := []string{"good", "bad", "improve", "other"}[rng.Intn(4)]
	comment := seedComments[kind]
	switch kind {
	case "good":
		if rng.Intn(2) == 0 {
			payload["rating"] = 1
		} else {
			payload["feedbackStatus"] = []string{"like"}
		}
		payload["ratingText"] = comment[rng.Intn(len(comment))]
	case "bad":
		if rng.Intn(2) == 0 {
			payload["rating"] = -1
		} else {
			payload["feedbackStatus"] = []string{"stepOn"}
		}
		payload["ratingText"] = comment[rng.Intn(len(comment))]
	case "improve":
		payload["feedbackStatus"] = []string{"improve"}
		payload["improveText"] = comment[rng.Intn(len(comment))]
	default:
		payload["feedbackStatus"] = []string{"other"}
		payload["rating"] = 0
	}
	if rng.Intn(2) == 0 {
		payload["details"] = map[string]interface{}{"rating": 1 + rng.Intn(10)}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return database.FeedbackRow{}, err
	}
	meta, err := json.Marshal(map[string]string{"chat_id": chat.ID, "message_id": answer.ID})
	if err != nil {
		return database.FeedbackRow{}, err
	}
	snapshot, err := json.Marshal(map[string]interface{}{"chat": map[string]interface{}{"chat": chat}})
	if err != nil {
		return database.FeedbackRow{}, err
	}

	submitted := answer.Timestamp + 60
	return database.FeedbackRow{
		ID:        uuid.NewString(),
		UserID:    userID,
		Version:   0,
		Type:      "rating",
		Data:      datatypes.JSON(data),
		Meta:      datatypes.JSON(meta),
		Snapshot:  datatypes.JSON(snapshot),
		CreatedAt: submitted,
		UpdatedAt: submitted,
	}, nil
}
