package model

const (
	// Rating
	MinRating = 1
	MaxRating = 5

	// Content limits
	MaxBodyLength = 4000

	// Feed chỉ trả về N review mới nhất
	FeedLimit = 50

	// ReadAtLayout - readAt nhận dạng YYYY-MM-DD
	ReadAtLayout = "2006-01-02"
)
