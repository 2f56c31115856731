package models

// Transaction types recorded in the token ledger.
const (
	TxEarned = "earned"
	TxSpent  = "spent"
)

// Transaction categories, matching the activities that move tokens.
const (
	CategorySession   = "session"
	CategoryMood      = "mood"
	CategoryResource  = "resource"
	CategoryStreak    = "streak"
	CategoryMilestone = "milestone"
	CategoryReward    = "reward"
	CategoryPurchase  = "purchase"
)

// Reward catalog types.
const (
	RewardTypeSession = "session"
	RewardTypeFeature = "feature"
	RewardTypeContent = "content"
)

// Streak kinds tracked per token account.
const (
	StreakMood      = "mood"
	StreakSessions  = "sessions"
	StreakResources = "resources"
)

// Token award amounts for engagement activities.
const (
	AwardMoodLog          int64 = 10
	AwardSessionComplete  int64 = 50
	AwardResourceRead     int64 = 15
	AwardResourceComplete int64 = 25
	AwardStreak3          int64 = 30
	AwardStreak7          int64 = 75
	AwardStreak30         int64 = 200
	AwardFirstSession     int64 = 100
	AwardMilestone5       int64 = 150
	AwardMilestone10      int64 = 300
	AwardMilestone20      int64 = 500
)

// Session lifecycle states.
const (
	SessionScheduled      = "scheduled"
	SessionPendingPayment = "pending_payment"
	SessionCompleted      = "completed"
	SessionCancelled      = "cancelled"
)

// Payment methods accepted when booking a session.
const (
	PaymentTokens = "tokens"
	PaymentCard   = "card"
)
