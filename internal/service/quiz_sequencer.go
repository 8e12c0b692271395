package service

import (
	"lms_backend/internal/model"
	"math/rand/v2"
)

// NextAttemptNumber 首次尝试为 1，其后为上一次编号加 1
func NextAttemptNumber(last *model.QuizAttempt) int {
	if last == nil {
		return 1
	}
	return last.AttemptNumber + 1
}

// QuizSequencer 为每次尝试生成相互独立的题目与选项顺序
type QuizSequencer struct {
	shuffle func(n int, swap func(i, j int))
}

// NewQuizSequencer 使用 math/rand/v2 的全局源（进程启动时随机播种），与时钟无关
func NewQuizSequencer() *QuizSequencer {
	return &QuizSequencer{shuffle: rand.Shuffle}
}

// NewQuizSequencerWithRand 测试中注入确定性随机源
func NewQuizSequencerWithRand(r *rand.Rand) *QuizSequencer {
	return &QuizSequencer{shuffle: r.Shuffle}
}

// GenerateOrder 打乱题目顺序，并独立打乱每道题的选项下标。题目为空时返回空顺序。
func (s *QuizSequencer) GenerateOrder(questions []model.QuizQuestion) model.AttemptOrder {
	order := model.AttemptOrder{
		QuestionOrder: make([]uint, len(questions)),
		AnswerOrders:  make(map[uint][]int, len(questions)),
	}

	for i, q := range questions {
		order.QuestionOrder[i] = q.ID

		options := make([]int, len(q.Options))
		for j := range options {
			options[j] = j
		}
		s.shuffle(len(options), func(a, b int) {
			options[a], options[b] = options[b], options[a]
		})
		order.AnswerOrders[q.ID] = options
	}

	s.shuffle(len(order.QuestionOrder), func(a, b int) {
		order.QuestionOrder[a], order.QuestionOrder[b] = order.QuestionOrder[b], order.QuestionOrder[a]
	})

	return order
}
