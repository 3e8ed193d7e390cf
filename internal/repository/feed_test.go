package repository

import (
	"context"
	"testing"
	"time"

	"chirp/internal/models"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedRepository_HomeScopesToFollowGraph(t *testing.T) {
	db := newTestDB(t)
	tweets := NewTweetRepository(db)
	follows := NewFollowRepository(db)
	feed := NewFeedRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	_, err := follows.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	own := createTestTweet(t, tweets, alice, "my own chirp")
	followed := createTestTweet(t, tweets, bob, "from bob")
	createTestTweet(t, tweets, carol, "from a stranger")

	followingIDs, err := follows.FollowingIDs(ctx, alice.ID)
	require.NoError(t, err)

	got, total, err := feed.Home(ctx, alice.ID, followingIDs, pageReq(1, 20))
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	ids := lo.Map(got, func(tw *models.Tweet, _ int) uint { return tw.ID })
	assert.ElementsMatch(t, []uint{own.ID, followed.ID}, ids)
}

func TestFeedRepository_HomeOrdering(t *testing.T) {
	db := newTestDB(t)
	tweets := NewTweetRepository(db)
	feed := NewFeedRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")

	// An old tweet with high engagement ranks below any recent tweet:
	// the 48 hour recency bucket dominates the engagement score.
	oldPopular := createTestTweet(t, tweets, alice, "old but popular")
	backdateTweet(t, db, oldPopular.ID, time.Now().Add(-72*time.Hour))
	require.NoError(t, db.Model(&models.Tweet{}).
		Where("id = ?", oldPopular.ID).
		Update("like_count", 100).Error)

	quiet := createTestTweet(t, tweets, alice, "recent and quiet")
	backdateTweet(t, db, quiet.ID, time.Now().Add(-2*time.Hour))

	engaged := createTestTweet(t, tweets, alice, "recent and engaged")
	backdateTweet(t, db, engaged.ID, time.Now().Add(-4*time.Hour))
	require.NoError(t, db.Model(&models.Tweet{}).
		Where("id = ?", engaged.ID).
		Update("like_count", 5).Error)

	got, _, err := feed.Home(ctx, alice.ID, nil, pageReq(1, 20))
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Within the recent bucket engagement wins, then recency; the old
	// tweet comes last no matter its score.
	assert.Equal(t, engaged.ID, got[0].ID)
	assert.Equal(t, quiet.ID, got[1].ID)
	assert.Equal(t, oldPopular.ID, got[2].ID)
}

func TestFeedRepository_HomeTiebreakIsStable(t *testing.T) {
	db := newTestDB(t)
	tweets := NewTweetRepository(db)
	feed := NewFeedRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")

	// Identical timestamps and scores: newest ID wins.
	when := time.Now().Add(-time.Hour).Truncate(time.Second)
	first := createTestTweet(t, tweets, alice, "first")
	second := createTestTweet(t, tweets, alice, "second")
	backdateTweet(t, db, first.ID, when)
	backdateTweet(t, db, second.ID, when)

	got, _, err := feed.Home(ctx, alice.ID, nil, pageReq(1, 20))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.Equal(t, first.ID, got[1].ID)
}

func TestFeedRepository_HomePaginationIsDisjoint(t *testing.T) {
	db := newTestDB(t)
	tweets := NewTweetRepository(db)
	feed := NewFeedRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	for i := 0; i < 5; i++ {
		createTestTweet(t, tweets, alice, "chirp")
	}

	all, _, err := feed.Home(ctx, alice.ID, nil, pageReq(1, 50))
	require.NoError(t, err)
	require.Len(t, all, 5)

	page1, total, err := feed.Home(ctx, alice.ID, nil, pageReq(1, 2))
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	page2, _, err := feed.Home(ctx, alice.ID, nil, pageReq(2, 2))
	require.NoError(t, err)

	// Consecutive pages are a prefix of the unpaginated order.
	combined := append(page1, page2...)
	for i, tw := range combined {
		assert.Equal(t, all[i].ID, tw.ID)
	}
}

func TestFeedRepository_DiscoverExcludesSelfAndFollowees(t *testing.T) {
	db := newTestDB(t)
	tweets := NewTweetRepository(db)
	follows := NewFollowRepository(db)
	feed := NewFeedRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")
	recluse := createTestUser(t, db, "recluse")
	require.NoError(t, db.Model(recluse).Update("is_private", true).Error)

	_, err := follows.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	createTestTweet(t, tweets, alice, "mine")
	createTestTweet(t, tweets, bob, "followee chirp")
	discoverable := createTestTweet(t, tweets, carol, "new voice")
	createTestTweet(t, tweets, recluse, "hidden")

	stale := createTestTweet(t, tweets, carol, "stale")
	backdateTweet(t, db, stale.ID, time.Now().Add(-25*time.Hour))

	followingIDs, err := follows.FollowingIDs(ctx, alice.ID)
	require.NoError(t, err)

	got, total, err := feed.Discover(ctx, alice.ID, followingIDs, pageReq(1, 20))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, got, 1)
	assert.Equal(t, discoverable.ID, got[0].ID)
}

func TestFeedRepository_DiscoverRanksByWeightedEngagement(t *testing.T) {
	db := newTestDB(t)
	tweets := NewTweetRepository(db)
	feed := NewFeedRepository(db)
	ctx := context.Background()

	viewer := createTestUser(t, db, "viewer")
	author := createTestUser(t, db, "author")

	liked := createTestTweet(t, tweets, author, "three likes")
	require.NoError(t, db.Model(&models.Tweet{}).
		Where("id = ?", liked.ID).
		Update("like_count", 3).Error)

	// Two retweets outrank three likes: retweets count double.
	retweeted := createTestTweet(t, tweets, author, "two retweets")
	require.NoError(t, db.Model(&models.Tweet{}).
		Where("id = ?", retweeted.ID).
		Update("retweet_count", 2).Error)

	got, _, err := feed.Discover(ctx, viewer.ID, nil, pageReq(1, 20))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, retweeted.ID, got[0].ID)
	assert.Equal(t, liked.ID, got[1].ID)
}

func TestFeedRepository_Hashtag(t *testing.T) {
	db := newTestDB(t)
	tweets := NewTweetRepository(db)
	feed := NewFeedRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	recluse := createTestUser(t, db, "recluse")
	require.NoError(t, db.Model(recluse).Update("is_private", true).Error)

	tagged := createTestTweet(t, tweets, alice, "loving #golang")
	createTestTweet(t, tweets, alice, "no tags here")
	createTestTweet(t, tweets, recluse, "secret #golang")

	got, total, err := feed.Hashtag(ctx, "golang", pageReq(1, 20))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, got, 1)
	assert.Equal(t, tagged.ID, got[0].ID)
}

func TestFeedRepository_Mentions(t *testing.T) {
	db := newTestDB(t)
	tweets := NewTweetRepository(db)
	feed := NewFeedRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	mention := createTestTweet(t, tweets, alice, "hey @bob @bob")
	require.NoError(t, tweets.CreateMentions(ctx, mention.ID, []uint{bob.ID, bob.ID}))
	createTestTweet(t, tweets, alice, "unrelated")

	got, total, err := feed.Mentions(ctx, bob.ID, pageReq(1, 20))
	require.NoError(t, err)
	// Duplicate mention rows collapse into a single feed entry.
	assert.EqualValues(t, 1, total)
	require.Len(t, got, 1)
	assert.Equal(t, mention.ID, got[0].ID)
}
