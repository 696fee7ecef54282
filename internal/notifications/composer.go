package notifications

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	dbtypes "github.com/collabhub/projects-backend/pkg/db/types"
	"github.com/collabhub/projects-backend/pkg/enums"
	pkgerrors "github.com/collabhub/projects-backend/pkg/errors"
)

const (
	LanguageEnglish = "en"
	LanguageFrench  = "fr"
)

// Composer renders every user-facing string in the engine: per-record digest
// lines, immediate email subjects and bodies, and the digest framing. All
// catalogs carry English and French; English is the fallback for anything
// else a user profile might hold.
type Composer struct {
	matcher language.Matcher
	tags    []language.Tag
}

// NewComposer builds a composer for the configured language list. The first
// language is the fallback and must be English.
func NewComposer(languages []string) (*Composer, error) {
	if len(languages) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one language is required")
	}
	if languages[0] != LanguageEnglish {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "english must be the fallback language")
	}
	tags := make([]language.Tag, 0, len(languages))
	for _, lang := range languages {
		tag, err := language.Parse(lang)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parsing language "+lang)
		}
		tags = append(tags, tag)
	}
	return &Composer{
		matcher: language.NewMatcher(tags),
		tags:    tags,
	}, nil
}

// MatchLanguage maps a user's preferred language onto a supported one.
func (c *Composer) MatchLanguage(preferred string) string {
	if preferred == "" {
		return LanguageEnglish
	}
	tag, _ := language.MatchStrings(c.matcher, preferred)
	base, _ := tag.Base()
	return base.String()
}

// digestLine is one notification-type catalog entry. Render receives the
// display count, project title, latest sender name and merged context and
// returns the sentence. Sender may be empty (deleted account); singular forms
// name the sender when one is known and fall back to generic phrasing.
type digestLine struct {
	en func(count int, title, sender string, ctx dbtypes.NotificationContext) string
	fr func(count int, title, sender string, ctx dbtypes.NotificationContext) string
}

var digestCatalog = map[enums.NotificationType]digestLine{
	enums.NotificationTypeComment: {
		en: func(count int, title, sender string, _ dbtypes.NotificationContext) string {
			if count == 1 {
				if sender != "" {
					return fmt.Sprintf("%s posted a new comment on the project %s.", sender, title)
				}
				return fmt.Sprintf("A new comment was posted on the project %s.", title)
			}
			return fmt.Sprintf("%d new comments were posted on the project %s.", count, title)
		},
		fr: func(count int, title, sender string, _ dbtypes.NotificationContext) string {
			if count == 1 {
				if sender != "" {
					return fmt.Sprintf("%s a publié un nouveau commentaire sur le projet %s.", sender, title)
				}
				return fmt.Sprintf("Un nouveau commentaire a été publié sur le projet %s.", title)
			}
			return fmt.Sprintf("%d nouveaux commentaires ont été publiés sur le projet %s.", count, title)
		},
	},
	enums.NotificationTypeReply: {
		en: func(count int, title, sender string, _ dbtypes.NotificationContext) string {
			if count == 1 {
				if sender != "" {
					return fmt.Sprintf("%s replied to your comment on the project %s.", sender, title)
				}
				return fmt.Sprintf("Someone replied to your comment on the project %s.", title)
			}
			return fmt.Sprintf("You received %d replies to your comments on the project %s.", count, title)
		},
		fr: func(count int, title, sender string, _ dbtypes.NotificationContext) string {
			if count == 1 {
				if sender != "" {
					return fmt.Sprintf("%s a répondu à votre commentaire sur le projet %s.", sender, title)
				}
				return fmt.Sprintf("Quelqu'un a répondu à votre commentaire sur le projet %s.", title)
			}
			return fmt.Sprintf("Vous avez reçu %d réponses à vos commentaires sur le projet %s.", count, title)
		},
	},
	enums.NotificationTypeReview: {
		en: func(count int, title, sender string, _ dbtypes.NotificationContext) string {
			if count == 1 {
				if sender != "" {
					return fmt.Sprintf("%s reviewed the project %s.", sender, title)
				}
				return fmt.Sprintf("The project %s received a new review.", title)
			}
			return fmt.Sprintf("The project %s received %d new reviews.", title, count)
		},
		fr: func(count int, title, sender string, _ dbtypes.NotificationContext) string {
			if count == 1 {
				if sender != "" {
					return fmt.Sprintf("%s a évalué le projet %s.", sender, title)
				}
				return fmt.Sprintf("Le projet %s a reçu une nouvelle évaluation.", title)
			}
			return fmt.Sprintf("Le projet %s a reçu %d nouvelles évaluations.", title, count)
		},
	},
	enums.NotificationTypeReadyForReview: {
		en: func(_ int, title, _ string, _ dbtypes.NotificationContext) string {
			return fmt.Sprintf("The project %s is ready for review.", title)
		},
		fr: func(_ int, title, _ string, _ dbtypes.NotificationContext) string {
			return fmt.Sprintf("Le projet %s est prêt pour évaluation.", title)
		},
	},
	enums.NotificationTypeProjectUpdated: {
		en: func(_ int, title, sender string, ctx dbtypes.NotificationContext) string {
			fields := localizeFields(ctx.ChangedFields, LanguageEnglish)
			switch {
			case sender != "" && len(fields) > 0:
				return fmt.Sprintf("%s updated the project %s: %s.", sender, title, joinList(fields, LanguageEnglish))
			case sender != "":
				return fmt.Sprintf("%s updated the project %s.", sender, title)
			case len(fields) > 0:
				return fmt.Sprintf("The project %s was updated: %s.", title, joinList(fields, LanguageEnglish))
			default:
				return fmt.Sprintf("The project %s was updated.", title)
			}
		},
		fr: func(_ int, title, sender string, ctx dbtypes.NotificationContext) string {
			fields := localizeFields(ctx.ChangedFields, LanguageFrench)
			switch {
			case sender != "" && len(fields) > 0:
				return fmt.Sprintf("%s a mis à jour le projet %s : %s.", sender, title, joinList(fields, LanguageFrench))
			case sender != "":
				return fmt.Sprintf("%s a mis à jour le projet %s.", sender, title)
			case len(fields) > 0:
				return fmt.Sprintf("Le projet %s a été mis à jour : %s.", title, joinList(fields, LanguageFrench))
			default:
				return fmt.Sprintf("Le projet %s a été mis à jour.", title)
			}
		},
	},
	enums.NotificationTypeMemberAdded: {
		en: func(count int, title, sender string, ctx dbtypes.NotificationContext) string {
			if n := memberCount(count, ctx.NewMembers); n != 1 {
				return fmt.Sprintf("%d new members joined the project %s.", n, title)
			}
			if sender != "" {
				return fmt.Sprintf("%s added a new member to the project %s.", sender, title)
			}
			return fmt.Sprintf("A new member joined the project %s.", title)
		},
		fr: func(count int, title, sender string, ctx dbtypes.NotificationContext) string {
			if n := memberCount(count, ctx.NewMembers); n != 1 {
				return fmt.Sprintf("%d nouveaux membres ont rejoint le projet %s.", n, title)
			}
			if sender != "" {
				return fmt.Sprintf("%s a ajouté un nouveau membre au projet %s.", sender, title)
			}
			return fmt.Sprintf("Un nouveau membre a rejoint le projet %s.", title)
		},
	},
	enums.NotificationTypeMemberUpdated: {
		en: func(count int, title, sender string, ctx dbtypes.NotificationContext) string {
			if n := memberCount(count, ctx.ModifiedMembers); n != 1 {
				return fmt.Sprintf("The roles of %d members of the project %s changed.", n, title)
			}
			if sender != "" {
				return fmt.Sprintf("%s changed the role of a member of the project %s.", sender, title)
			}
			return fmt.Sprintf("The role of a member of the project %s changed.", title)
		},
		fr: func(count int, title, sender string, ctx dbtypes.NotificationContext) string {
			if n := memberCount(count, ctx.ModifiedMembers); n != 1 {
				return fmt.Sprintf("Les rôles de %d membres du projet %s ont changé.", n, title)
			}
			if sender != "" {
				return fmt.Sprintf("%s a modifié le rôle d'un membre du projet %s.", sender, title)
			}
			return fmt.Sprintf("Le rôle d'un membre du projet %s a changé.", title)
		},
	},
	enums.NotificationTypeMemberRemoved: {
		en: func(count int, title, _ string, ctx dbtypes.NotificationContext) string {
			if n := memberCount(count, ctx.RemovedMembers); n == 1 {
				return fmt.Sprintf("A member left the project %s.", title)
			} else {
				return fmt.Sprintf("%d members left the project %s.", n, title)
			}
		},
		fr: func(count int, title, _ string, ctx dbtypes.NotificationContext) string {
			if n := memberCount(count, ctx.RemovedMembers); n == 1 {
				return fmt.Sprintf("Un membre a quitté le projet %s.", title)
			} else {
				return fmt.Sprintf("%d membres ont quitté le projet %s.", n, title)
			}
		},
	},
	enums.NotificationTypeAnnouncement: {
		en: func(count int, title, sender string, _ dbtypes.NotificationContext) string {
			if count == 1 {
				if sender != "" {
					return fmt.Sprintf("%s published a new announcement on the project %s.", sender, title)
				}
				return fmt.Sprintf("A new announcement was published on the project %s.", title)
			}
			return fmt.Sprintf("%d new announcements were published on the project %s.", count, title)
		},
		fr: func(count int, title, sender string, _ dbtypes.NotificationContext) string {
			if count == 1 {
				if sender != "" {
					return fmt.Sprintf("%s a publié une nouvelle annonce sur le projet %s.", sender, title)
				}
				return fmt.Sprintf("Une nouvelle annonce a été publiée sur le projet %s.", title)
			}
			return fmt.Sprintf("%d nouvelles annonces ont été publiées sur le projet %s.", count, title)
		},
	},
	enums.NotificationTypeBlogEntry: {
		en: func(count int, title, sender string, _ dbtypes.NotificationContext) string {
			if count == 1 {
				if sender != "" {
					return fmt.Sprintf("%s published a new blog entry on the project %s.", sender, title)
				}
				return fmt.Sprintf("A new blog entry was published on the project %s.", title)
			}
			return fmt.Sprintf("%d new blog entries were published on the project %s.", count, title)
		},
		fr: func(count int, title, sender string, _ dbtypes.NotificationContext) string {
			if count == 1 {
				if sender != "" {
					return fmt.Sprintf("%s a publié un nouvel article de blog sur le projet %s.", sender, title)
				}
				return fmt.Sprintf("Un nouvel article de blog a été publié sur le projet %s.", title)
			}
			return fmt.Sprintf("%d nouveaux articles de blog ont été publiés sur le projet %s.", count, title)
		},
	},
}

// ReminderText renders the digest line for one record in one language. The
// sender is the latest contributor folded into the record. Types without a
// digest catalog entry (immediate-only types) return "".
func (c *Composer) ReminderText(t enums.NotificationType, lang string, count int, projectTitle, senderName string, ctx dbtypes.NotificationContext) string {
	line, ok := digestCatalog[t]
	if !ok {
		return ""
	}
	if c.MatchLanguage(lang) == LanguageFrench {
		return line.fr(count, projectTitle, senderName, ctx)
	}
	return line.en(count, projectTitle, senderName, ctx)
}

// ImmediateInput carries everything immediate templates can interpolate.
type ImmediateInput struct {
	ReceiverName  string
	ProjectTitle  string
	ApplicantName string
}

type immediateTemplate struct {
	subject func(in ImmediateInput) string
	body    func(in ImmediateInput) string
}

var immediateCatalog = map[enums.NotificationType]map[string]immediateTemplate{
	enums.NotificationTypeComment: {
		LanguageEnglish: {
			subject: func(in ImmediateInput) string {
				return fmt.Sprintf("New comment on %s", in.ProjectTitle)
			},
			body: func(in ImmediateInput) string {
				return fmt.Sprintf("Hello %s,\n\nA new comment was posted on the project %s.", in.ReceiverName, in.ProjectTitle)
			},
		},
		LanguageFrench: {
			subject: func(in ImmediateInput) string {
				return fmt.Sprintf("Nouveau commentaire sur %s", in.ProjectTitle)
			},
			body: func(in ImmediateInput) string {
				return fmt.Sprintf("Bonjour %s,\n\nUn nouveau commentaire a été publié sur le projet %s.", in.ReceiverName, in.ProjectTitle)
			},
		},
	},
	enums.NotificationTypeReply: {
		LanguageEnglish: {
			subject: func(in ImmediateInput) string {
				return fmt.Sprintf("New reply to your comment on %s", in.ProjectTitle)
			},
			body: func(in ImmediateInput) string {
				return fmt.Sprintf("Hello %s,\n\nSomeone replied to your comment on the project %s.", in.ReceiverName, in.ProjectTitle)
			},
		},
		LanguageFrench: {
			subject: func(in ImmediateInput) string {
				return fmt.Sprintf("Nouvelle réponse à votre commentaire sur %s", in.ProjectTitle)
			},
			body: func(in ImmediateInput) string {
				return fmt.Sprintf("Bonjour %s,\n\nQuelqu'un a répondu à votre commentaire sur le projet %s.", in.ReceiverName, in.ProjectTitle)
			},
		},
	},
	enums.NotificationTypeReview: {
		LanguageEnglish: {
			subject: func(in ImmediateInput) string {
				return fmt.Sprintf("New review on %s", in.ProjectTitle)
			},
			body: func(in ImmediateInput) string {
				return fmt.Sprintf("Hello %s,\n\nThe project %s received a new review.", in.ReceiverName, in.ProjectTitle)
			},
		},
		LanguageFrench: {
			subject: func(in ImmediateInput) string {
				return fmt.Sprintf("Nouvelle évaluation sur %s", in.ProjectTitle)
			},
			body: func(in ImmediateInput) string {
				return fmt.Sprintf("Bonjour %s,\n\nLe projet %s a reçu une nouvelle évaluation.", in.ReceiverName, in.ProjectTitle)
			},
		},
	},
	enums.NotificationTypeReadyForReview: {
		LanguageEnglish: {
			subject: func(in ImmediateInput) string {
				return fmt.Sprintf("Project %s is ready for review", in.ProjectTitle)
			},
			body: func(in ImmediateInput) string {
				return fmt.Sprintf("Hello %s,\n\nThe project %s was submitted and is ready for review.", in.ReceiverName, in.ProjectTitle)
			},
		},
		LanguageFrench: {
			subject: func(in ImmediateInput) string {
				return fmt.Sprintf("Le projet %s est prêt pour évaluation", in.ProjectTitle)
			},
			body: func(in ImmediateInput) string {
				return fmt.Sprintf("Bonjour %s,\n\nLe projet %s a été soumis et est prêt pour évaluation.", in.ReceiverName, in.ProjectTitle)
			},
		},
	},
	enums.NotificationTypeApplication: {
		LanguageEnglish: {
			subject: func(in ImmediateInput) string {
				return fmt.Sprintf("New application for %s", in.ProjectTitle)
			},
			body: func(in ImmediateInput) string {
				return fmt.Sprintf("Hello %s,\n\n%s applied to an announcement on the project %s.", in.ReceiverName, in.ApplicantName, in.ProjectTitle)
			},
		},
		LanguageFrench: {
			subject: func(in ImmediateInput) string {
				return fmt.Sprintf("Nouvelle candidature pour %s", in.ProjectTitle)
			},
			body: func(in ImmediateInput) string {
				return fmt.Sprintf("Bonjour %s,\n\n%s a postulé à une annonce sur le projet %s.", in.ReceiverName, in.ApplicantName, in.ProjectTitle)
			},
		},
	},
	enums.NotificationTypeMemberAddedSelf: {
		LanguageEnglish: {
			subject: func(in ImmediateInput) string {
				return fmt.Sprintf("You were added to %s", in.ProjectTitle)
			},
			body: func(in ImmediateInput) string {
				return fmt.Sprintf("Hello %s,\n\nYou were added to the project %s.", in.ReceiverName, in.ProjectTitle)
			},
		},
		LanguageFrench: {
			subject: func(in ImmediateInput) string {
				return fmt.Sprintf("Vous avez été ajouté au projet %s", in.ProjectTitle)
			},
			body: func(in ImmediateInput) string {
				return fmt.Sprintf("Bonjour %s,\n\nVous avez été ajouté au projet %s.", in.ReceiverName, in.ProjectTitle)
			},
		},
	},
	enums.NotificationTypeMemberUpdatedSelf: {
		LanguageEnglish: {
			subject: func(in ImmediateInput) string {
				return fmt.Sprintf("Your role on %s changed", in.ProjectTitle)
			},
			body: func(in ImmediateInput) string {
				return fmt.Sprintf("Hello %s,\n\nYour role on the project %s changed.", in.ReceiverName, in.ProjectTitle)
			},
		},
		LanguageFrench: {
			subject: func(in ImmediateInput) string {
				return fmt.Sprintf("Votre rôle sur %s a changé", in.ProjectTitle)
			},
			body: func(in ImmediateInput) string {
				return fmt.Sprintf("Bonjour %s,\n\nVotre rôle sur le projet %s a changé.", in.ReceiverName, in.ProjectTitle)
			},
		},
	},
	enums.NotificationTypeProjectMessage: {
		LanguageEnglish: {
			subject: func(in ImmediateInput) string {
				return fmt.Sprintf("New message on %s", in.ProjectTitle)
			},
			body: func(in ImmediateInput) string {
				return fmt.Sprintf("Hello %s,\n\nA new message was posted on the project %s.", in.ReceiverName, in.ProjectTitle)
			},
		},
		LanguageFrench: {
			subject: func(in ImmediateInput) string {
				return fmt.Sprintf("Nouveau message sur %s", in.ProjectTitle)
			},
			body: func(in ImmediateInput) string {
				return fmt.Sprintf("Bonjour %s,\n\nUn nouveau message a été publié sur le projet %s.", in.ReceiverName, in.ProjectTitle)
			},
		},
	},
}

// ImmediateMessage renders subject and body for an immediate email.
func (c *Composer) ImmediateMessage(t enums.NotificationType, lang string, in ImmediateInput) (string, string, error) {
	perLang, ok := immediateCatalog[t]
	if !ok {
		return "", "", pkgerrors.New(pkgerrors.CodeInternal, "no immediate template for type "+string(t))
	}
	tmpl, ok := perLang[c.MatchLanguage(lang)]
	if !ok {
		tmpl = perLang[LanguageEnglish]
	}
	return tmpl.subject(in), tmpl.body(in), nil
}

// DigestSubject returns the subject line of the periodic reminder email.
func (c *Composer) DigestSubject(lang string) string {
	if c.MatchLanguage(lang) == LanguageFrench {
		return "Votre résumé d'activité"
	}
	return "Your activity digest"
}

// DigestBody assembles the reminder email from per-record lines.
func (c *Composer) DigestBody(lang, receiverName string, lines []string) string {
	var b strings.Builder
	if c.MatchLanguage(lang) == LanguageFrench {
		fmt.Fprintf(&b, "Bonjour %s,\n\nVoici ce qui s'est passé depuis votre dernier résumé :\n\n", receiverName)
	} else {
		fmt.Fprintf(&b, "Hello %s,\n\nHere is what happened since your last digest:\n\n", receiverName)
	}
	for _, line := range lines {
		b.WriteString("- ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

var fieldNamesFr = map[string]string{
	"title":        "le titre",
	"description":  "la description",
	"status":       "le statut",
	"deadline":     "l'échéance",
	"banner_image": "l'image de bannière",
	"categories":   "les catégories",
	"tags":         "les étiquettes",
	"members":      "les membres",
	"visibility":   "la visibilité",
}

// localizeFields translates field identifiers for display. Unknown fields
// fall back to a humanized form of the identifier.
func localizeFields(fields []string, lang string) []string {
	if len(fields) == 0 {
		return nil
	}
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		if lang == LanguageFrench {
			if translated, ok := fieldNamesFr[field]; ok {
				out = append(out, translated)
				continue
			}
		}
		out = append(out, strings.ReplaceAll(field, "_", " "))
	}
	return out
}

// joinList renders "a, b and c" / "a, b et c".
func joinList(items []string, lang string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	conjunction := " and "
	if lang == LanguageFrench {
		conjunction = " et "
	}
	return strings.Join(items[:len(items)-1], ", ") + conjunction + items[len(items)-1]
}

// memberCount prefers the distinct members recorded in the context over the
// raw event count, which keeps repeated changes to one member singular.
func memberCount(count int, members []dbtypes.MemberChange) int {
	if len(members) > 0 {
		return len(members)
	}
	if count < 1 {
		return 1
	}
	return count
}
