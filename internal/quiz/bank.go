package quiz

// DefaultQuestions returns the built-in question bank.
func DefaultQuestions() []Question {
	return []Question{
		NewQuestion("What is the capital of France?", "Paris", "Berlin", "Madrid", "Paris", "Rome"),
		NewQuestion("What is 2 + 2?", "4", "3", "4", "5", "6"),
		NewQuestion("Which language is used for web development?", "JavaScript", "Java", "C#", "JavaScript", "Python"),
		NewQuestion("Which planet is known as the Red Planet?", "Mars", "Earth", "Mars", "Jupiter", "Saturn"),
	}
}
