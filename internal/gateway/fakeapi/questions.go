package fakeapi

// question is the wire shape served by GET /questions/{mode}.
type question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Type    string   `json:"type"`
	Options []string `json:"options,omitempty"`
}

var sscQuestions = []question{
	{ID: "name", Text: "Hey! What's your name? 😊", Type: "text"},
	{ID: "age", Text: "How old are you?", Type: "age_choice", Options: []string{"13", "14", "15", "16", "17", "18"}},
	{ID: "location", Text: "Which city/town are you from? 🌍", Type: "text"},
	{ID: "diploma_interest", Text: "Would you like hands-on, job-ready courses after 10th?", Type: "choice", Options: []string{"Yes — Diploma/Polytechnic", "No — I'll continue to 11th/12th"}},
	{ID: "fav_subject", Text: "Which subject makes you lose track of time because you enjoy it?", Type: "choice", Options: []string{"Mathematics", "Physics/Chemistry", "Biology", "Computer/CS", "Commerce/Accounts", "History/Geography", "Languages", "Arts/Music"}},
	{ID: "hobby", Text: "What do you enjoy doing in your free time?", Type: "choice", Options: []string{"Solving puzzles/coding", "Reading/writing", "Sports/fitness", "Drawing/designing", "Building/fixing things", "Helping people/volunteering"}},
	{ID: "dream_job", Text: "If you could do anything for a career, what would it be?", Type: "text"},
	{ID: "strength", Text: "What are you naturally good at?", Type: "choice", Options: []string{"Numbers & logic", "Creative thinking", "Communication", "Hands-on work", "Problem-solving", "Leadership"}},
	{ID: "study_style", Text: "How do you prefer to learn?", Type: "choice", Options: []string{"Reading textbooks", "Watching videos", "Doing practical work", "Group discussions", "Self-practice"}},
	{ID: "career_priority", Text: "What matters most to you in a career?", Type: "choice", Options: []string{"High salary", "Job security", "Creativity & innovation", "Helping society", "Work-life balance", "Fame & recognition"}},
	{ID: "tech_comfort", Text: "How comfortable are you with technology & computers?", Type: "choice", Options: []string{"Very comfortable — I love tech!", "Somewhat comfortable", "Not very comfortable", "I prefer hands-on/non-tech work"}},
	{ID: "work_preference", Text: "Would you rather work:", Type: "choice", Options: []string{"Indoors (office/lab)", "Outdoors (field/travel)", "Mix of both", "From home"}},
	{ID: "math_feeling", Text: "How do you feel about mathematics?", Type: "choice", Options: []string{"Love it! It's my favorite", "It's okay, I can manage", "Not my strong suit", "I struggle with it"}},
	{ID: "future_vision", Text: "Where do you see yourself in 10 years?", Type: "text"},
}

var hscQuestions = []question{
	{ID: "name", Text: "What's your name? 😊", Type: "text"},
	{ID: "age", Text: "How old are you?", Type: "age_choice", Options: []string{"16", "17", "18", "19", "20"}},
	{ID: "stream", Text: "Which stream did you choose in 11th-12th?", Type: "choice", Options: []string{"Science (PCM)", "Science (PCB)", "Commerce", "Arts/Humanities", "Vocational/Other"}},
	{ID: "favorite_subject_hsc", Text: "Which subject do you enjoy the most?", Type: "text"},
	{ID: "exam_prep", Text: "Are you preparing for any competitive exams?", Type: "choice", Options: []string{"Yes — JEE/NEET", "Yes — CLAT/CA/Other", "Yes — State entrance exams", "No, not yet", "No, I prefer direct admission"}},
	{ID: "career_clarity", Text: "How clear are you about your career path?", Type: "choice", Options: []string{"Very clear — I know what I want", "Somewhat clear — narrowed down options", "Confused — need guidance", "Open to exploring options"}},
	{ID: "higher_ed", Text: "What are your plans after 12th?", Type: "choice", Options: []string{"Engineering/B.Tech", "Medical (MBBS/BDS/etc.)", "Law (LLB)", "Design/Architecture", "Commerce (B.Com/BBA/CA)", "Arts/Humanities (BA)", "Science (B.Sc)", "Unsure yet"}},
	{ID: "interest_area", Text: "Which field excites you the most?", Type: "choice", Options: []string{"Technology & Innovation", "Healthcare & Medicine", "Business & Entrepreneurship", "Creative Arts & Design", "Social Sciences & Law", "Research & Academia", "Government & Public Service"}},
	{ID: "study_abroad", Text: "Are you considering studying abroad?", Type: "choice", Options: []string{"Yes, definitely", "Maybe, if opportunities arise", "No, prefer India", "Haven't thought about it"}},
	{ID: "internship_exp", Text: "Have you done any internships or projects?", Type: "choice", Options: []string{"Yes, multiple", "Yes, one", "No, but planning to", "No, not interested"}},
	{ID: "skill_dev", Text: "What skills are you currently developing?", Type: "text"},
	{ID: "work_style", Text: "What kind of work environment do you prefer?", Type: "choice", Options: []string{"Corporate/office job", "Startup/dynamic environment", "Self-employed/freelance", "Research/academic setting", "Field work/travel", "Government/public sector"}},
	{ID: "motivation", Text: "What motivates you the most?", Type: "choice", Options: []string{"Financial success", "Making a difference", "Personal growth", "Recognition & awards", "Work-life balance", "Innovation & creativity"}},
	{ID: "final_message", Text: "Anything else you'd like to share about your goals or interests?", Type: "text"},
}

// questionBank returns the questions for mode, or nil for an unknown mode.
func questionBank(mode string) []question {
	switch mode {
	case "ssc":
		return sscQuestions
	case "hsc":
		return hscQuestions
	default:
		return nil
	}
}
