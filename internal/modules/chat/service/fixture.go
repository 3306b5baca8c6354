package service

import "strings"

type keywordReply struct {
	keywords []string
	reply    string
}

// Checked in order; the first match wins.
var keywordReplies = []keywordReply{
	{
		keywords: []string{"schedule", "timetable"},
		reply:    "📅 I can help you organize your schedule! Here are your upcoming classes:\n\n📚 CS301 - Data Structures (Mon, Wed, Fri at 9:00 AM)\n📊 MATH201 - Calculus II (Tue, Thu at 11:00 AM)\n💻 CS101 - Programming (Mon, Wed at 2:00 PM)\n\nWould you like me to add any assignments or reminders?",
	},
	{
		keywords: []string{"assignment", "deadline", "homework"},
		reply:    "📝 You have 2 pending assignments:\n\n✏️ Data Structures Project - Due in 7 days\n📐 Calculus Problem Set - Due in 3 days\n\nNeed help prioritizing your work or breaking them down into smaller tasks?",
	},
	{
		keywords: []string{"study", "material", "notes"},
		reply:    "📖 I can help you find study materials! For which subject are you looking for resources?\n\nAvailable subjects:\n• Computer Science 💻\n• Mathematics 📐\n• Physics ⚛️\n• Engineering ⚙️\n\nJust let me know which one!",
	},
	{
		keywords: []string{"exam", "test", "preparation"},
		reply:    "📚 Preparing for exams? Here's a quick study strategy:\n\n1. ✅ Start reviewing 2 weeks before\n2. 📅 Create a realistic study schedule\n3. 📝 Practice with past papers\n4. 👥 Join or form study groups\n5. ⏰ Take regular 10-minute breaks\n\nWhich subject's exam are you preparing for?",
	},
	{
		keywords: []string{"hello", "hi", "hey"},
		reply:    "👋 Hello! I'm CampusSync AI, your academic assistant.\n\nI can help you with:\n• 📅 Managing your schedule\n• 📝 Tracking assignments & deadlines\n• 📚 Finding study materials\n• 🎯 Exam preparation tips\n• 📢 Summarizing announcements\n\nHow can I assist you today?",
	},
	{
		keywords: []string{"help", "what can you do"},
		reply:    "🤖 I'm CampusSync AI! Here's what I can do:\n\n✨ Schedule Management - Keep track of your classes\n📝 Assignment Tracking - Never miss a deadline\n📚 Study Resources - Find materials for your courses\n🎓 Exam Prep - Get study tips and plans\n📢 Announcements - Summarize important notices\n\nJust ask me anything related to your academics!",
	},
}

const demoReply = "I'm running in demo mode without an API key. I can help you with schedules, assignments, and study materials! 🎓\n\n💡 Tip: Set GEMINI_API_KEY in your .env file to enable real AI-powered responses."

// MockReply picks a canned reply by keyword.
func MockReply(message string) string {
	lower := strings.ToLower(message)
	for _, kr := range keywordReplies {
		for _, kw := range kr.keywords {
			if strings.Contains(lower, kw) {
				return kr.reply
			}
		}
	}
	return demoReply
}
