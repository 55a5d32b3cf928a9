package docstore

import "fmt"

// Path helpers for the persisted store layout:
//
//	users/{userId}
//	users/{userId}/allDirectMessages/{peerId}/directMessages/{msgId}
//	channels/{channelId}
//	channels/{channelId}/threads/{threadId}
//	channels/{channelId}/threads/{threadId}/messages/{msgId}
//	.../reactions/{reactionId}

const (
	UsersCollection    = "users"
	ChannelsCollection = "channels"
)

func UserPath(userID string) string {
	return fmt.Sprintf("users/%s", userID)
}

func ChannelPath(channelID string) string {
	return fmt.Sprintf("channels/%s", channelID)
}

func ChannelThreads(channelID string) string {
	return fmt.Sprintf("channels/%s/threads", channelID)
}

func ThreadPath(channelID, threadID string) string {
	return fmt.Sprintf("channels/%s/threads/%s", channelID, threadID)
}

func ThreadMessages(channelID, threadID string) string {
	return fmt.Sprintf("channels/%s/threads/%s/messages", channelID, threadID)
}

func ThreadReactions(channelID, threadID string) string {
	return fmt.Sprintf("channels/%s/threads/%s/reactions", channelID, threadID)
}

func ThreadMessageReactions(channelID, threadID, messageID string) string {
	return fmt.Sprintf("channels/%s/threads/%s/messages/%s/reactions", channelID, threadID, messageID)
}

func DirectMessagePartners(userID string) string {
	return fmt.Sprintf("users/%s/allDirectMessages", userID)
}

func DirectMessages(ownerID, peerID string) string {
	return fmt.Sprintf("users/%s/allDirectMessages/%s/directMessages", ownerID, peerID)
}

func DirectMessageReactions(ownerID, peerID, messageID string) string {
	return fmt.Sprintf("users/%s/allDirectMessages/%s/directMessages/%s/reactions", ownerID, peerID, messageID)
}

func Join(collection, id string) string {
	return collection + "/" + id
}
