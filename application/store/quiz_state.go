package store

import "sync"

// QuizQuestion is one multiple-choice question fetched for a node.
type QuizQuestion struct {
	Question      string            `json:"question"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
	Explanation   string            `json:"explanation"`
}

// QuizState holds the quiz panel state: fetched questions, the user's
// answers and the computed score.
type QuizState struct {
	mu sync.RWMutex

	questions    []QuizQuestion
	currentIndex int
	answers      []string
	score        int
	completed    bool
	modalOpen    bool
	loading      bool
	err          string
}

// QuizSnapshot is a consistent copy of the quiz panel state.
type QuizSnapshot struct {
	Questions    []QuizQuestion `json:"questions"`
	CurrentIndex int            `json:"currentQuestionIndex"`
	Answers      []string       `json:"userAnswers"`
	Score        int            `json:"score"`
	Completed    bool           `json:"isCompleted"`
	ModalOpen    bool           `json:"isQuizModalOpen"`
	Loading      bool           `json:"isLoading"`
	Err          string         `json:"error,omitempty"`
}

// NewQuizState creates an empty quiz state.
func NewQuizState() *QuizState {
	return &QuizState{}
}

// SetQuestions replaces the question set and resets answers and score.
func (s *QuizState) SetQuestions(questions []QuizQuestion) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.questions = questions
	s.answers = make([]string, len(questions))
	s.currentIndex = 0
	s.score = 0
	s.completed = false
	s.err = ""
}

// SetCurrentIndex moves to a question; out-of-range indexes are ignored.
func (s *QuizState) SetCurrentIndex(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.questions) {
		return
	}
	s.currentIndex = index
}

// SetAnswer records the user's answer for a question.
func (s *QuizState) SetAnswer(index int, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.answers) {
		return
	}
	s.answers[index] = answer
}

// CalculateScore counts correct answers and marks the quiz completed.
func (s *QuizState) CalculateScore() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	correct := 0
	for i, answer := range s.answers {
		if i < len(s.questions) && answer != "" && answer == s.questions[i].CorrectAnswer {
			correct++
		}
	}
	s.score = correct
	s.completed = true
	return correct
}

// Reset keeps the questions but clears answers, score and progress.
func (s *QuizState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.answers = make([]string, len(s.questions))
	s.currentIndex = 0
	s.score = 0
	s.completed = false
	s.err = ""
}

// ToggleModal flips the quiz modal flag.
func (s *QuizState) ToggleModal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modalOpen = !s.modalOpen
}

// SetLoading flips the loading flag.
func (s *QuizState) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// SetError records a panel-local error message.
func (s *QuizState) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = msg
}

// Clear resets the quiz state entirely.
func (s *QuizState) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.questions = nil
	s.answers = nil
	s.currentIndex = 0
	s.score = 0
	s.completed = false
	s.modalOpen = false
	s.loading = false
	s.err = ""
}

// Snapshot returns a consistent copy of the quiz panel state.
func (s *QuizState) Snapshot() QuizSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	questions := make([]QuizQuestion, len(s.questions))
	copy(questions, s.questions)
	answers := make([]string, len(s.answers))
	copy(answers, s.answers)

	return QuizSnapshot{
		Questions:    questions,
		CurrentIndex: s.currentIndex,
		Answers:      answers,
		Score:        s.score,
		Completed:    s.completed,
		ModalOpen:    s.modalOpen,
		Loading:      s.loading,
		Err:          s.err,
	}
}
