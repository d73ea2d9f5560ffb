package api

import (
	"encoding/json"
	"fmt"
)

// The backend grew one endpoint set per activity type, and the near-duplicate
// implementations drifted: vocab reports total_words and next_word, concept
// mapping reports total_questions and next_question, debate mixes snake_case
// and camelCase (current_posts vs currentPosts). Everything is folded into
// the canonical types here, at the boundary; nothing past this file looks at
// raw payload keys.

type rawObject map[string]json.RawMessage

// firstOf returns the value for the first key present in the object.
func firstOf(obj rawObject, keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func decodeInt(obj rawObject, keys ...string) (int, bool) {
	raw, ok := firstOf(obj, keys...)
	if !ok {
		return 0, false
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		// Some handlers serialize scores as floats.
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return 0, false
		}
		return int(f), true
	}
	return n, true
}

func decodeFloat(obj rawObject, keys ...string) (float64, bool) {
	raw, ok := firstOf(obj, keys...)
	if !ok {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	return f, true
}

func decodeString(obj rawObject, keys ...string) (string, bool) {
	raw, ok := firstOf(obj, keys...)
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func decodeBool(obj rawObject, keys ...string) bool {
	raw, ok := firstOf(obj, keys...)
	if !ok {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false
	}
	return b
}

// decodeItem accepts either an item object or a bare string (vocab word).
func decodeItem(raw json.RawMessage) (*Item, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var word string
	if err := json.Unmarshal(raw, &word); err == nil {
		return &Item{Prompt: word}, nil
	}

	var obj rawObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("decode item: %w", err)
	}

	item := &Item{}
	item.ID, _ = decodeString(obj, "id", "item_id", "question_id", "word_id")
	item.Ordinal, _ = decodeInt(obj, "ordinal", "index", "position")
	item.Prompt, _ = decodeString(obj, "prompt", "text", "question", "word", "content")
	item.Difficulty, _ = decodeString(obj, "difficulty", "level")

	if rawChoices, ok := firstOf(obj, "choices", "options"); ok {
		if err := json.Unmarshal(rawChoices, &item.Choices); err != nil {
			return nil, fmt.Errorf("decode item choices: %w", err)
		}
	}
	return item, nil
}

func decodePosts(obj rawObject) ([]Post, error) {
	raw, ok := firstOf(obj, "current_posts", "currentPosts", "posts", "transcript")
	if !ok {
		return nil, nil
	}

	var posts []struct {
		Author string `json:"author"`
		Role   string `json:"role"`
		Text   string `json:"text"`
		Body   string `json:"body"`
	}
	if err := json.Unmarshal(raw, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}

	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		author := p.Author
		if author == "" {
			author = p.Role
		}
		text := p.Text
		if text == "" {
			text = p.Body
		}
		out = append(out, Post{Author: author, Text: text})
	}
	return out, nil
}

// normalizeSession maps a raw bootstrap/progress payload into a Session.
func normalizeSession(raw []byte) (Session, error) {
	var obj rawObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Session{}, fmt.Errorf("decode session payload: %w", err)
	}

	var s Session
	var ok bool

	s.ID, ok = decodeString(obj, "id", "session_id", "sessionId")
	if !ok {
		return Session{}, fmt.Errorf("session payload missing id")
	}

	s.SubjectID, _ = decodeString(obj, "subject_id", "assignment_id", "list_id", "topic_id")
	if a, ok := decodeString(obj, "activity", "activity_type"); ok {
		s.Activity = ActivityType(a)
	}

	s.TotalItems, ok = decodeInt(obj, "total_items", "total_questions", "total_words", "totalItems")
	if !ok {
		return Session{}, fmt.Errorf("session payload missing total item count")
	}

	s.CurrentIndex, _ = decodeInt(obj, "current_index", "currentIndex")
	s.Score, _ = decodeInt(obj, "current_score", "score", "points_total")
	s.IsResuming = decodeBool(obj, "is_resuming", "isResuming", "resumed")

	if na, ok := decodeString(obj, "next_action", "nextAction"); ok {
		s.NextAction = NextAction(na)
	}

	if rawItem, ok := firstOf(obj, "item", "question", "word", "current_item", "current_question", "current_word"); ok {
		item, err := decodeItem(rawItem)
		if err != nil {
			return Session{}, err
		}
		s.Item = item
	}
	if s.Item != nil && s.Item.Ordinal == 0 {
		s.Item.Ordinal = s.CurrentIndex
	}

	posts, err := decodePosts(obj)
	if err != nil {
		return Session{}, err
	}
	s.Posts = posts

	return s, nil
}

// normalizeResult maps a raw submit payload into a SubmissionResult.
func normalizeResult(raw []byte) (SubmissionResult, error) {
	var obj rawObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return SubmissionResult{}, fmt.Errorf("decode submission payload: %w", err)
	}

	var r SubmissionResult
	r.Correct = decodeBool(obj, "correct", "accepted")
	r.PointsEarned, _ = decodeInt(obj, "points_earned", "pointsEarned", "score_delta")
	r.TotalScore, _ = decodeInt(obj, "current_score", "total_score", "score")
	r.Feedback, _ = decodeString(obj, "feedback", "message")
	r.IsComplete = decodeBool(obj, "is_complete", "isComplete", "complete")
	r.NeedsConfirmation = decodeBool(obj, "needs_confirmation", "needsConfirmation")
	r.PercentageScore, _ = decodeFloat(obj, "percentage_score", "percentageScore", "percentage")
	r.Passed = decodeBool(obj, "passed")
	r.NeedsRegeneration = decodeBool(obj, "needs_regeneration", "needsRegeneration", "regenerate")
	r.AttemptsExhausted = decodeBool(obj, "attempts_exhausted", "item_failed", "force_advance")

	if na, ok := decodeString(obj, "next_action", "nextAction"); ok {
		r.NextAction = NextAction(na)
	}

	if rawItem, ok := firstOf(obj, "next_item", "next_question", "next_word", "nextItem"); ok {
		item, err := decodeItem(rawItem)
		if err != nil {
			return SubmissionResult{}, err
		}
		r.NextItem = item
	}

	posts, err := decodePosts(obj)
	if err != nil {
		return SubmissionResult{}, err
	}
	r.Posts = posts

	return r, nil
}

// normalizeFinish maps a raw finish-early/confirm payload.
func normalizeFinish(raw []byte) (FinishEarlyResult, error) {
	var obj rawObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return FinishEarlyResult{}, fmt.Errorf("decode finish payload: %w", err)
	}

	var f FinishEarlyResult
	f.Success = decodeBool(obj, "success")
	f.Passed = decodeBool(obj, "passed")
	f.FinalScore, _ = decodeInt(obj, "final_score", "finalScore", "score")
	f.ItemsCompleted, _ = decodeInt(obj, "words_completed", "items_completed", "questions_completed")
	f.PercentageScore, _ = decodeFloat(obj, "percentage_score", "percentage")
	return f, nil
}
