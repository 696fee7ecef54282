package notifications

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	dbtypes "github.com/collabhub/projects-backend/pkg/db/types"
	"github.com/collabhub/projects-backend/pkg/enums"
)

func newTestComposer(t *testing.T) *Composer {
	t.Helper()
	composer, err := NewComposer([]string{"en", "fr"})
	if err != nil {
		t.Fatalf("NewComposer: %v", err)
	}
	return composer
}

func TestComposerRequiresEnglishFallback(t *testing.T) {
	if _, err := NewComposer([]string{"fr", "en"}); err == nil {
		t.Fatal("expected error when english is not first")
	}
	if _, err := NewComposer(nil); err == nil {
		t.Fatal("expected error for empty language list")
	}
}

func TestMatchLanguageFallsBackToEnglish(t *testing.T) {
	composer := newTestComposer(t)

	cases := map[string]string{
		"en":    "en",
		"fr":    "fr",
		"fr-CA": "fr",
		"de":    "en",
		"":      "en",
		"junk!": "en",
	}
	for input, want := range cases {
		if got := composer.MatchLanguage(input); got != want {
			t.Fatalf("MatchLanguage(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestReminderTextSingularPlural(t *testing.T) {
	composer := newTestComposer(t)

	single := composer.ReminderText(enums.NotificationTypeComment, "en", 1, "Atlas", "", dbtypes.NotificationContext{})
	if single != "A new comment was posted on the project Atlas." {
		t.Fatalf("singular = %q", single)
	}

	plural := composer.ReminderText(enums.NotificationTypeComment, "fr", 3, "Atlas", "", dbtypes.NotificationContext{})
	if plural != "3 nouveaux commentaires ont été publiés sur le projet Atlas." {
		t.Fatalf("plural fr = %q", plural)
	}
}

func TestReminderTextSingularNamesSender(t *testing.T) {
	composer := newTestComposer(t)

	en := composer.ReminderText(enums.NotificationTypeComment, "en", 1, "Atlas", "Lee", dbtypes.NotificationContext{})
	if en != "Lee posted a new comment on the project Atlas." {
		t.Fatalf("en singular = %q", en)
	}

	fr := composer.ReminderText(enums.NotificationTypeComment, "fr", 1, "Atlas", "Lee", dbtypes.NotificationContext{})
	if fr != "Lee a publié un nouveau commentaire sur le projet Atlas." {
		t.Fatalf("fr singular = %q", fr)
	}

	reply := composer.ReminderText(enums.NotificationTypeReply, "en", 1, "Atlas", "Lee", dbtypes.NotificationContext{})
	if reply != "Lee replied to your comment on the project Atlas." {
		t.Fatalf("reply singular = %q", reply)
	}

	// Once events merge, the line counts instead of naming anyone.
	merged := composer.ReminderText(enums.NotificationTypeComment, "en", 2, "Atlas", "Lee", dbtypes.NotificationContext{})
	if merged != "2 new comments were posted on the project Atlas." {
		t.Fatalf("merged = %q", merged)
	}
}

func TestReminderTextProjectUpdatedJoinsFields(t *testing.T) {
	composer := newTestComposer(t)
	ctx := dbtypes.NotificationContext{ChangedFields: []string{"title", "description", "deadline"}}

	en := composer.ReminderText(enums.NotificationTypeProjectUpdated, "en", 2, "Atlas", "Lee", ctx)
	if en != "Lee updated the project Atlas: title, description and deadline." {
		t.Fatalf("en field join = %q", en)
	}

	fr := composer.ReminderText(enums.NotificationTypeProjectUpdated, "fr", 2, "Atlas", "", ctx)
	if !strings.Contains(fr, "le titre, la description et l'échéance") {
		t.Fatalf("fr field join = %q", fr)
	}
}

func TestReminderTextMemberUpdatedCountsDistinctMembers(t *testing.T) {
	composer := newTestComposer(t)
	one := uuid.New()

	// Three raw events against a single member still read as one change.
	ctx := dbtypes.NotificationContext{
		ModifiedMembers: []dbtypes.MemberChange{{UserID: one, Role: "reviewer"}},
	}
	msg := composer.ReminderText(enums.NotificationTypeMemberUpdated, "en", 3, "Atlas", "", ctx)
	if msg != "The role of a member of the project Atlas changed." {
		t.Fatalf("distinct member message = %q", msg)
	}
}

func TestReminderTextImmediateOnlyTypesAreEmpty(t *testing.T) {
	composer := newTestComposer(t)

	for _, typ := range []enums.NotificationType{
		enums.NotificationTypeApplication,
		enums.NotificationTypeMemberAddedSelf,
		enums.NotificationTypeMemberUpdatedSelf,
		enums.NotificationTypeProjectMessage,
	} {
		if msg := composer.ReminderText(typ, "en", 1, "Atlas", "", dbtypes.NotificationContext{}); msg != "" {
			t.Fatalf("type %s should have no digest line, got %q", typ, msg)
		}
	}
}

func TestImmediateMessageLocalized(t *testing.T) {
	composer := newTestComposer(t)

	subject, body, err := composer.ImmediateMessage(enums.NotificationTypeApplication, "fr", ImmediateInput{
		ReceiverName:  "Marie",
		ProjectTitle:  "Atlas",
		ApplicantName: "Lee",
	})
	if err != nil {
		t.Fatalf("ImmediateMessage: %v", err)
	}
	if subject != "Nouvelle candidature pour Atlas" {
		t.Fatalf("subject = %q", subject)
	}
	if !strings.Contains(body, "Lee a postulé") {
		t.Fatalf("body = %q", body)
	}
}

func TestImmediateMessageUnknownLanguageFallsBack(t *testing.T) {
	composer := newTestComposer(t)

	subject, _, err := composer.ImmediateMessage(enums.NotificationTypeComment, "de", ImmediateInput{
		ReceiverName: "Jo",
		ProjectTitle: "Atlas",
	})
	if err != nil {
		t.Fatalf("ImmediateMessage: %v", err)
	}
	if subject != "New comment on Atlas" {
		t.Fatalf("subject = %q", subject)
	}
}

func TestDigestBodyListsLines(t *testing.T) {
	composer := newTestComposer(t)

	body := composer.DigestBody("fr", "Marie", []string{"ligne un", "ligne deux"})
	if !strings.HasPrefix(body, "Bonjour Marie,") {
		t.Fatalf("body prefix = %q", body)
	}
	if !strings.Contains(body, "- ligne un\n- ligne deux\n") {
		t.Fatalf("body lines = %q", body)
	}

	if subject := composer.DigestSubject("fr"); subject != "Votre résumé d'activité" {
		t.Fatalf("subject = %q", subject)
	}
}
