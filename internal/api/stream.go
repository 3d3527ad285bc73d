package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hearthforum/hearth/internal/auth"
	"github.com/hearthforum/hearth/internal/forum"
	"github.com/hearthforum/hearth/internal/realtime"
	"github.com/hearthforum/hearth/pkg/logging"
)

const heartbeatInterval = 25 * time.Second

// StreamAPI serves the per-topic live event stream over SSE. A client gets a
// full snapshot first, then incremental events it can feed to the same
// reducers the server uses, so its view stays converged with the mirror.
type StreamAPI struct {
	comments *forum.CommentService
	bus      realtime.Subscriber
	logger   *zap.Logger
}

// NewStreamAPI creates a new stream API
func NewStreamAPI(comments *forum.CommentService, bus realtime.Subscriber) *StreamAPI {
	return &StreamAPI{
		comments: comments,
		bus:      bus,
		logger:   logging.WithComponent("stream"),
	}
}

// StreamTopic handles GET /api/topics/:id/stream
func (a *StreamAPI) StreamTopic(c *gin.Context) {
	topicID := c.Param("id")
	ctx := c.Request.Context()
	viewerID := auth.FromContext(c).UserID

	view, err := a.comments.FetchTopicWithComments(ctx, topicID, viewerID)
	if err != nil {
		writeError(c, err)
		return
	}

	events, cancel, err := a.bus.Subscribe(ctx, forum.TopicChannel(topicID))
	if err != nil {
		writeError(c, err)
		return
	}
	defer cancel()

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)

	mirror := realtime.NewTopicMirror(view)
	snapshot, err := mirror.Snapshot()
	if err != nil {
		a.logger.Error("snapshot failed", zap.String("topic_id", topicID), zap.Error(err))
		return
	}
	fmt.Fprintf(c.Writer, "event: snapshot\ndata: %s\n\n", snapshot)
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(c.Writer, ": ping\n\n")
			flusher.Flush()
		case env, ok := <-events:
			if !ok {
				return
			}
			// Keep the mirror current so reconnecting clients that hit this
			// instance again start from converged state.
			mirror.Apply(env)
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", env.Event, env.Payload)
			flusher.Flush()
		}
	}
}
