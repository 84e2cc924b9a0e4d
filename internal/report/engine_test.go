package report

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/user/report-bot/internal/schema"
)

const (
	testUserID = int64(42)
	testChatID = int64(42)
)

func newTestEngine(store *MockReportStore, msgr *MockMessenger) (*Engine, SessionStore) {
	sessions := NewMemorySessionStore()
	return NewEngine(schema.Default(), store, msgr, sessions), sessions
}

// stubDelivery sets up permissive messenger expectations for flows where
// the individual sends are not what the test is about.
func stubDelivery(msgr *MockMessenger) {
	msgr.On("SendText", mock.Anything, mock.Anything, mock.Anything).Return(10, nil)
	msgr.On("SendChoices", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(20, nil)
	msgr.On("EditChoices", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	msgr.On("DeleteMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	msgr.On("ScheduleDelayed", mock.Anything).Return()
}

func TestEngine_Start_FreshDraft(t *testing.T) {
	store := new(MockReportStore)
	msgr := NewMockMessenger()
	engine, sessions := newTestEngine(store, msgr)

	ConfigureStore(store).WithReportToday(testUserID, false, nil)
	msgr.On("SendChoices", mock.Anything, testChatID, menuTextNew, mock.Anything).Return(77, nil)

	require.NoError(t, engine.Start(context.Background(), testUserID, testChatID))

	sess, ok := sessions.Get(testUserID)
	require.True(t, ok)
	assert.Equal(t, PhaseMenu, sess.Phase)
	assert.Equal(t, 77, sess.Draft.MenuMessageID)
	assert.True(t, engine.InDialog(testUserID))
	assert.False(t, engine.AwaitingValue(testUserID))
}

func TestEngine_Start_ExistingReportAsksToEdit(t *testing.T) {
	store := new(MockReportStore)
	msgr := NewMockMessenger()
	engine, sessions := newTestEngine(store, msgr)

	ConfigureStore(store).WithReportToday(testUserID, true, nil)
	msgr.On("SendChoices", mock.Anything, testChatID, textConfirmEdit, mock.Anything).Return(55, nil)

	require.NoError(t, engine.Start(context.Background(), testUserID, testChatID))

	sess, ok := sessions.Get(testUserID)
	require.True(t, ok)
	assert.Equal(t, PhaseConfirmEdit, sess.Phase)
	assert.Equal(t, 55, sess.ConfirmMessageID)
	assert.Nil(t, sess.Draft)
}

func TestEngine_Start_RepeatKeepsOpenDialog(t *testing.T) {
	store := new(MockReportStore)
	msgr := NewMockMessenger()
	engine, sessions := newTestEngine(store, msgr)
	startFresh(t, engine, store, msgr)

	sess, _ := sessions.Get(testUserID)
	sess.Draft.SetValue("prinyato_zayavok", NumericValue(5))
	menuID := sess.Draft.MenuMessageID

	// Pressing the entry button again must not reset the dialog.
	require.NoError(t, engine.Start(context.Background(), testUserID, testChatID))

	kept, ok := sessions.Get(testUserID)
	require.True(t, ok)
	assert.Same(t, sess, kept)
	assert.True(t, kept.Draft.Value("prinyato_zayavok").IsSet())
	assert.Equal(t, 5, kept.Draft.Value("prinyato_zayavok").Int())
	assert.Equal(t, menuID, kept.Draft.MenuMessageID)

	// Only the first start posted a menu, and the live menu was not deleted.
	msgr.AssertNumberOfCalls(t, "SendChoices", 1)
	msgr.AssertNotCalled(t, "DeleteMessage", mock.Anything, testChatID, menuID)
	msgr.AssertCalled(t, "SendText", mock.Anything, testChatID, textDialogOpen)
}

func TestEngine_Start_StoreFailure(t *testing.T) {
	store := new(MockReportStore)
	msgr := NewMockMessenger()
	engine, sessions := newTestEngine(store, msgr)

	ConfigureStore(store).WithReportToday(testUserID, false, errors.New("db down"))
	stubDelivery(msgr)

	err := engine.Start(context.Background(), testUserID, testChatID)
	require.Error(t, err)

	_, ok := sessions.Get(testUserID)
	assert.False(t, ok)
	msgr.AssertCalled(t, "SendText", mock.Anything, testChatID, textStartFailed)
}

func TestEngine_HandleEvent_WithoutDialog(t *testing.T) {
	store := new(MockReportStore)
	msgr := NewMockMessenger()
	engine, _ := newTestEngine(store, msgr)
	stubDelivery(msgr)

	err := engine.HandleEvent(context.Background(), testUserID, testChatID, Submit{})
	require.NoError(t, err)

	msgr.AssertCalled(t, "SendText", mock.Anything, testChatID, textNoOpenReport)
	store.AssertNotCalled(t, "UpsertToday", mock.Anything, mock.Anything, mock.Anything)
}

func startFresh(t *testing.T, engine *Engine, store *MockReportStore, msgr *MockMessenger) {
	t.Helper()
	ConfigureStore(store).WithReportToday(testUserID, false, nil)
	stubDelivery(msgr)
	require.NoError(t, engine.Start(context.Background(), testUserID, testChatID))
}

func TestEngine_SelectFieldThenValue(t *testing.T) {
	store := new(MockReportStore)
	msgr := NewMockMessenger()
	engine, sessions := newTestEngine(store, msgr)
	startFresh(t, engine, store, msgr)

	err := engine.HandleEvent(context.Background(), testUserID, testChatID, SelectField{Key: "prinyato_zayavok"})
	require.NoError(t, err)
	assert.True(t, engine.AwaitingValue(testUserID))

	handled, err := engine.HandleValue(context.Background(), testUserID, 501, "5")
	require.NoError(t, err)
	require.True(t, handled)

	sess, ok := sessions.Get(testUserID)
	require.True(t, ok)
	assert.Equal(t, PhaseMenu, sess.Phase)
	assert.Empty(t, sess.Draft.AwaitingField)
	assert.Equal(t, 5, sess.Draft.Value("prinyato_zayavok").Int())

	// The menu was refreshed in place, not reposted.
	msgr.AssertCalled(t, "EditChoices",
		mock.Anything, testChatID, sess.Draft.MenuMessageID, menuTextUpdated, mock.Anything)
	msgr.AssertNumberOfCalls(t, "SendChoices", 1)
	// Prompt, user input and confirmation are cleaned up.
	msgr.AssertCalled(t, "DeleteMessage", mock.Anything, testChatID, 501)
}

func TestEngine_HandleValue_RejectsBadNumber(t *testing.T) {
	store := new(MockReportStore)
	msgr := NewMockMessenger()
	engine, sessions := newTestEngine(store, msgr)
	startFresh(t, engine, store, msgr)

	require.NoError(t, engine.HandleEvent(context.Background(), testUserID, testChatID,
		SelectField{Key: "polucheno_tkp"}))

	for _, input := range []string{"abc", "-3", "1.5", ""} {
		handled, err := engine.HandleValue(context.Background(), testUserID, 502, input)
		require.NoError(t, err, input)
		assert.True(t, handled, input)

		sess, ok := sessions.Get(testUserID)
		require.True(t, ok)
		assert.Equal(t, PhaseAwaitingValue, sess.Phase, input)
		assert.Equal(t, "polucheno_tkp", sess.Draft.AwaitingField, input)
		assert.False(t, sess.Draft.Value("polucheno_tkp").IsSet(), input)
	}

	msgr.AssertCalled(t, "SendText", mock.Anything, testChatID, textBadNumber)

	// A valid retry still lands.
	handled, err := engine.HandleValue(context.Background(), testUserID, 503, " 7 ")
	require.NoError(t, err)
	require.True(t, handled)
	sess, _ := sessions.Get(testUserID)
	assert.Equal(t, 7, sess.Draft.Value("polucheno_tkp").Int())
}

func TestEngine_HandleValue_TextField(t *testing.T) {
	store := new(MockReportStore)
	msgr := NewMockMessenger()
	engine, sessions := newTestEngine(store, msgr)
	startFresh(t, engine, store, msgr)

	require.NoError(t, engine.HandleEvent(context.Background(), testUserID, testChatID,
		SelectField{Key: "problemy"}))

	handled, err := engine.HandleValue(context.Background(), testUserID, 504, "  нет проблем  ")
	require.NoError(t, err)
	require.True(t, handled)

	sess, _ := sessions.Get(testUserID)
	assert.Equal(t, "нет проблем", sess.Draft.Value("problemy").Text())
}

func TestEngine_HandleValue_NotAwaiting(t *testing.T) {
	store := new(MockReportStore)
	msgr := NewMockMessenger()
	engine, _ := newTestEngine(store, msgr)

	handled, err := engine.HandleValue(context.Background(), testUserID, 505, "5")
	require.NoError(t, err)
	assert.False(t, handled)
}

func TestEngine_HandleSkip(t *testing.T) {
	store := new(MockReportStore)
	msgr := NewMockMessenger()
	engine, sessions := newTestEngine(store, msgr)
	startFresh(t, engine, store, msgr)

	require.NoError(t, engine.HandleEvent(context.Background(), testUserID, testChatID,
		SelectField{Key: "oformleno_dogovorov"}))

	handled, err := engine.HandleSkip(context.Background(), testUserID, 506)
	require.NoError(t, err)
	require.True(t, handled)

	sess, _ := sessions.Get(testUserID)
	v := sess.Draft.Value("oformleno_dogovorov")
	assert.True(t, v.IsSet())
	assert.Equal(t, 0, v.Int())
	assert.Equal(t, PhaseMenu, sess.Phase)
}

func TestEngine_HandleSkip_NoActiveField(t *testing.T) {
	store := new(MockReportStore)
	msgr := NewMockMessenger()
	engine, _ := newTestEngine(store, msgr)
	startFresh(t, engine, store, msgr)

	handled, err := engine.HandleSkip(context.Background(), testUserID, 507)
	require.NoError(t, err)
	assert.True(t, handled)
	msgr.AssertCalled(t, "SendText", mock.Anything, testChatID, textNoActiveField)
}

func TestEngine_MenuEventIgnoredWhileAwaitingValue(t *testing.T) {
	store := new(MockReportStore)
	msgr := NewMockMessenger()
	engine, sessions := newTestEngine(store, msgr)
	startFresh(t, engine, store, msgr)

	require.NoError(t, engine.HandleEvent(context.Background(), testUserID, testChatID,
		SelectField{Key: "prinyato_zayavok"}))

	// Pressing submit mid-entry changes nothing.
	require.NoError(t, engine.HandleEvent(context.Background(), testUserID, testChatID, Submit{}))

	sess, _ := sessions.Get(testUserID)
	assert.Equal(t, PhaseAwaitingValue, sess.Phase)
	assert.Equal(t, "prinyato_zayavok", sess.Draft.AwaitingField)
	store.AssertNotCalled(t, "UpsertToday", mock.Anything, mock.Anything, mock.Anything)
	msgr.AssertCalled(t, "SendText", mock.Anything, testChatID, textFinishField)
}

func TestEngine_Reset_ClearsEnteredValues(t *testing.T) {
	store := new(MockReportStore)
	msgr := NewMockMessenger()
	engine, sessions := newTestEngine(store, msgr)
	startFresh(t, engine, store, msgr)

	sess, _ := sessions.Get(testUserID)
	sess.Draft.SetValue("prinyato_zayavok", NumericValue(5))
	sess.Draft.SetValue("problemy", TextValue("шум"))

	require.NoError(t, engine.HandleEvent(context.Background(), testUserID, testChatID, Reset{}))

	assert.False(t, sess.Draft.Value("prinyato_zayavok").IsSet())
	assert.False(t, sess.Draft.Value("problemy").IsSet())
	msgr.AssertCalled(t, "EditChoices",
		mock.Anything, testChatID, sess.Draft.MenuMessageID, menuTextReset, mock.Anything)
}

func TestEngine_Submit_WritesCompleteReport(t *testing.T) {
	store := new(MockReportStore)
	msgr := NewMockMessenger()
	engine, sessions := newTestEngine(store, msgr)
	startFresh(t, engine, store, msgr)

	var submitted map[string]any
	store.On("UpsertToday", mock.Anything, testUserID, mock.Anything).
		Run(func(args mock.Arguments) {
			submitted = args.Get(2).(map[string]any)
		}).Return(nil)

	sess, _ := sessions.Get(testUserID)
	sess.Draft.SetValue("prinyato_zayavok", NumericValue(5))
	sess.Draft.SetValue("problemy", TextValue("none"))
	menuID := sess.Draft.MenuMessageID

	require.NoError(t, engine.HandleEvent(context.Background(), testUserID, testChatID, Submit{}))

	store.AssertNumberOfCalls(t, "UpsertToday", 1)
	require.Len(t, submitted, len(schema.Default().Fields()))
	assert.Equal(t, 5, submitted["prinyato_zayavok"])
	assert.Equal(t, "none", submitted["problemy"])
	assert.Equal(t, 0, submitted["polucheno_tkp"])
	assert.Equal(t, "", submitted["provedeny_peregovory"])

	_, ok := sessions.Get(testUserID)
	assert.False(t, ok)
	msgr.AssertCalled(t, "DeleteMessage", mock.Anything, testChatID, menuID)
	msgr.AssertCalled(t, "SendText", mock.Anything, testChatID, textSubmitted)
}

func TestEngine_Submit_FailureKeepsDraft(t *testing.T) {
	store := new(MockReportStore)
	msgr := NewMockMessenger()
	engine, sessions := newTestEngine(store, msgr)
	startFresh(t, engine, store, msgr)

	ConfigureStore(store).WithUpsert(testUserID, errors.New("connection lost"))

	sess, _ := sessions.Get(testUserID)
	sess.Draft.SetValue("prinyato_zayavok", NumericValue(9))

	err := engine.HandleEvent(context.Background(), testUserID, testChatID, Submit{})
	require.Error(t, err)

	kept, ok := sessions.Get(testUserID)
	require.True(t, ok)
	assert.Equal(t, 9, kept.Draft.Value("prinyato_zayavok").Int())
	msgr.AssertCalled(t, "SendText", mock.Anything, testChatID, textSaveFailed)
}

func TestEngine_Cancel_DiscardsWithoutWrite(t *testing.T) {
	store := new(MockReportStore)
	msgr := NewMockMessenger()
	engine, sessions := newTestEngine(store, msgr)
	startFresh(t, engine, store, msgr)

	sess, _ := sessions.Get(testUserID)
	sess.Draft.SetValue("prinyato_zayavok", NumericValue(3))
	menuID := sess.Draft.MenuMessageID

	require.NoError(t, engine.HandleEvent(context.Background(), testUserID, testChatID, Cancel{}))

	_, ok := sessions.Get(testUserID)
	assert.False(t, ok)
	store.AssertNotCalled(t, "UpsertToday", mock.Anything, mock.Anything, mock.Anything)
	msgr.AssertCalled(t, "DeleteMessage", mock.Anything, testChatID, menuID)
	msgr.AssertCalled(t, "SendText", mock.Anything, testChatID, textCancelled)

	// A new dialog starts from a blank draft.
	require.NoError(t, engine.Start(context.Background(), testUserID, testChatID))
	fresh, ok := sessions.Get(testUserID)
	require.True(t, ok)
	assert.False(t, fresh.Draft.Value("prinyato_zayavok").IsSet())
}

func TestEngine_EditFlow_KeepsUntouchedValues(t *testing.T) {
	store := new(MockReportStore)
	msgr := NewMockMessenger()
	engine, sessions := newTestEngine(store, msgr)
	stubDelivery(msgr)

	stored := map[string]any{
		"prinyato_zayavok": int64(5),
		"polucheno_tkp":    int64(2),
		"problemy":         "старый текст",
	}
	ConfigureStore(store).
		WithReportToday(testUserID, true, nil).
		WithStoredValues(testUserID, stored, nil)

	var submitted map[string]any
	store.On("UpsertToday", mock.Anything, testUserID, mock.Anything).
		Run(func(args mock.Arguments) {
			submitted = args.Get(2).(map[string]any)
		}).Return(nil)

	require.NoError(t, engine.Start(context.Background(), testUserID, testChatID))
	require.NoError(t, engine.HandleEvent(context.Background(), testUserID, testChatID, EditToday{}))

	sess, ok := sessions.Get(testUserID)
	require.True(t, ok)
	assert.Equal(t, PhaseMenu, sess.Phase)
	assert.Equal(t, 5, sess.Draft.Value("prinyato_zayavok").Int())

	// Change a single field, then submit: the rest must survive.
	require.NoError(t, engine.HandleEvent(context.Background(), testUserID, testChatID,
		SelectField{Key: "prinyato_zayavok"}))
	handled, err := engine.HandleValue(context.Background(), testUserID, 508, "8")
	require.NoError(t, err)
	require.True(t, handled)

	require.NoError(t, engine.HandleEvent(context.Background(), testUserID, testChatID, Submit{}))

	require.NotNil(t, submitted)
	assert.Equal(t, 8, submitted["prinyato_zayavok"])
	assert.Equal(t, 2, submitted["polucheno_tkp"])
	assert.Equal(t, "старый текст", submitted["problemy"])
	msgr.AssertCalled(t, "SendText", mock.Anything, testChatID, textUpdated)
}

func TestEngine_CancelDialog(t *testing.T) {
	store := new(MockReportStore)
	msgr := NewMockMessenger()
	engine, sessions := newTestEngine(store, msgr)

	assert.False(t, engine.CancelDialog(context.Background(), testUserID))

	startFresh(t, engine, store, msgr)
	require.NoError(t, engine.HandleEvent(context.Background(), testUserID, testChatID,
		SelectField{Key: "prinyato_zayavok"}))

	assert.True(t, engine.CancelDialog(context.Background(), testUserID))

	_, ok := sessions.Get(testUserID)
	assert.False(t, ok)
	store.AssertNotCalled(t, "UpsertToday", mock.Anything, mock.Anything, mock.Anything)
	msgr.AssertCalled(t, "SendText", mock.Anything, testChatID, textCancelled)
}

func TestEngine_ConfirmEdit_Declined(t *testing.T) {
	store := new(MockReportStore)
	msgr := NewMockMessenger()
	engine, sessions := newTestEngine(store, msgr)
	stubDelivery(msgr)

	ConfigureStore(store).WithReportToday(testUserID, true, nil)

	require.NoError(t, engine.Start(context.Background(), testUserID, testChatID))
	require.NoError(t, engine.HandleEvent(context.Background(), testUserID, testChatID, Cancel{}))

	_, ok := sessions.Get(testUserID)
	assert.False(t, ok)
	store.AssertNotCalled(t, "GetReportToday", mock.Anything, mock.Anything)
	msgr.AssertCalled(t, "SendText", mock.Anything, testChatID, textCancelled)
}

func TestEngine_FullDialog_EntriesSkipsAndDefaults(t *testing.T) {
	store := new(MockReportStore)
	msgr := NewMockMessenger()
	engine, _ := newTestEngine(store, msgr)
	startFresh(t, engine, store, msgr)

	var submitted map[string]any
	store.On("UpsertToday", mock.Anything, testUserID, mock.Anything).
		Run(func(args mock.Arguments) {
			submitted = args.Get(2).(map[string]any)
		}).Return(nil)

	ctx := context.Background()

	require.NoError(t, engine.HandleEvent(ctx, testUserID, testChatID, SelectField{Key: "prinyato_zayavok"}))
	handled, err := engine.HandleValue(ctx, testUserID, 601, "5")
	require.NoError(t, err)
	require.True(t, handled)

	require.NoError(t, engine.HandleEvent(ctx, testUserID, testChatID, SelectField{Key: "polucheno_tkp"}))
	handled, err = engine.HandleSkip(ctx, testUserID, 602)
	require.NoError(t, err)
	require.True(t, handled)

	require.NoError(t, engine.HandleEvent(ctx, testUserID, testChatID, SelectField{Key: "problemy"}))
	handled, err = engine.HandleValue(ctx, testUserID, 603, "none")
	require.NoError(t, err)
	require.True(t, handled)

	require.NoError(t, engine.HandleEvent(ctx, testUserID, testChatID, Submit{}))

	require.NotNil(t, submitted)
	require.Len(t, submitted, len(schema.Default().Fields()))
	assert.Equal(t, 5, submitted["prinyato_zayavok"])
	assert.Equal(t, "none", submitted["problemy"])
	assert.Equal(t, 0, submitted["polucheno_tkp"])
	// Untouched fields carry the kind defaults.
	assert.Equal(t, 0, submitted["oformleno_protokolov"])
	assert.Equal(t, "", submitted["provedeny_peregovory"])
}

func TestEngine_ConfirmEdit_ReportVanished(t *testing.T) {
	store := new(MockReportStore)
	msgr := NewMockMessenger()
	engine, sessions := newTestEngine(store, msgr)
	stubDelivery(msgr)

	ConfigureStore(store).
		WithReportToday(testUserID, true, nil).
		WithStoredValues(testUserID, nil, ErrNoReportToday)

	require.NoError(t, engine.Start(context.Background(), testUserID, testChatID))
	err := engine.HandleEvent(context.Background(), testUserID, testChatID, EditToday{})
	require.NoError(t, err)

	_, ok := sessions.Get(testUserID)
	assert.False(t, ok)
	msgr.AssertCalled(t, "SendText", mock.Anything, testChatID, textReportGone)
}
