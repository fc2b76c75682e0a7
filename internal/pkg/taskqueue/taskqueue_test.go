package taskqueue

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redisc "github.com/paragraf-app/core/internal/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewService(redisc.Wrap(goredis.NewClient(&goredis.Options{Addr: mr.Addr()})))
}

func TestEnqueueAndGet(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	task, created, err := svc.Enqueue(ctx, "test.type", map[string]int{"n": 1}, "", "group")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, TaskPending, task.Status)

	got, err := svc.GetByID(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, "test.type", got.Type)
}

func TestEnqueueDedupReturnsLiveTask(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, created, err := svc.Enqueue(ctx, "test.type", nil, "key-1", "")
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := svc.Enqueue(ctx, "test.type", nil, "key-1", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestTerminalStatusReleasesDedup(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, _, err := svc.Enqueue(ctx, "test.type", nil, "key-1", "")
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(ctx, first.ID, TaskCompleted, "done", ""))

	second, created, err := svc.Enqueue(ctx, "test.type", nil, "key-1", "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestListFilters(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	a, _, err := svc.Enqueue(ctx, "type.a", nil, "", "")
	require.NoError(t, err)
	_, _, err = svc.Enqueue(ctx, "type.b", nil, "", "")
	require.NoError(t, err)
	require.NoError(t, svc.UpdateStatus(ctx, a.ID, TaskFailed, nil, "boom"))

	typeA := "type.a"
	tasks, total, err := svc.List(ctx, 1, 10, &typeA, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, tasks, 1)
	assert.Equal(t, "boom", tasks[0].Error)

	failed := TaskFailed
	tasks, _, err = svc.List(ctx, 1, 10, nil, &failed)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, a.ID, tasks[0].ID)
}

func TestDeleteCompleted(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	done, _, err := svc.Enqueue(ctx, "test.type", nil, "", "")
	require.NoError(t, err)
	require.NoError(t, svc.UpdateStatus(ctx, done.ID, TaskCompleted, nil, ""))

	live, _, err := svc.Enqueue(ctx, "test.type", nil, "", "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCompleted(ctx, 0))

	got, err := svc.GetByID(ctx, done.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = svc.GetByID(ctx, live.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
}
