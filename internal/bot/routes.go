package bot

import (
	"context"

	"aoqbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) buildRouter() *Router {
	r := NewRouter()

	// Команды
	r.Command("start", b.handleStart)
	r.Command("cancel_input", b.handleCancelInput)
	r.Command("myid", b.handleMyID)

	// Административное меню (reply-кнопки)
	r.Text(btnSpecialists, b.staffOnly(b.handleSpecialistsMenu))
	r.Text(btnStats, b.staffOnly(b.handleStatsMenu))
	r.Text(btnBroadcast, b.staffOnly(b.handleBroadcastStart))
	r.Text(btnExportData, b.staffOnly(b.handleDataDump))
	r.Text(btnCategories, b.staffOnly(b.handleCategoriesMenu))
	r.Text(btnServices, b.staffOnly(b.handleServicesMenu))
	r.Text(btnAccesses, b.adminOnly(b.handleAccessMenu))

	// Диалог оценки
	r.CallbackPrefix("cat:pick:", b.handleCategoryPick)
	r.CallbackPrefix("sub:pick:", b.handleSubcategoryPick)
	r.CallbackPrefix("svc:pick:", b.handleServicePick)
	r.Callback("svc:skip:-", b.handleServiceSkip)
	r.CallbackPrefix("score:pick:", b.handleScorePick)
	r.CallbackPrefix("nps:", b.handleNPSPick)
	r.StateText(models.StateAwaitingImprovementComment, b.handleCommentText)

	// Специалисты
	r.Callback("spec:add:-", b.staffOnly(b.handleSpecialistAddStart))
	r.Callback("spec:find:-", b.staffOnly(b.handleSpecialistSearchStart))
	r.Callback("spec:import:-", b.staffOnly(b.handleRosterImportStart))
	r.CallbackPrefix("spec:page:", b.staffOnly(b.handleSpecialistsPage))
	r.CallbackPrefix("spec:open:", b.staffOnly(b.handleSpecialistOpen))
	r.CallbackPrefix("spec:del:", b.staffOnly(b.handleSpecialistDelete))
	r.CallbackPrefix("spec:qr:", b.staffOnly(b.handleSpecialistQR))
	r.CallbackPrefix("org:pick:", b.staffOnly(b.handleOrganizationPick))
	r.CallbackPrefix("exp:word:", b.staffOnly(b.handleWordExport))
	r.StateText(models.StateAwaitingSpecialistName, b.staffOnly(b.handleSpecialistNameInput))
	r.StateText(models.StateAwaitingSpecialistOrg, b.staffOnly(b.handleSpecialistOrgInput))
	r.StateText(models.StateAwaitingSpecialistDept, b.staffOnly(b.handleSpecialistDeptInput))
	r.StateText(models.StateAwaitingSpecialistPos, b.staffOnly(b.handleSpecialistPosInput))
	r.StateText(models.StateAwaitingSearchQuery, b.staffOnly(b.handleSearchQueryInput))
	r.StateText(models.StateAwaitingRosterImport, b.staffOnly(b.handleRosterDocument))

	// Категории и услуги
	r.Callback("cat:add:-", b.staffOnly(b.handleCategoryAddStart))
	r.Callback("cat:import:-", b.staffOnly(b.handleTaxonomyImportStart))
	r.CallbackPrefix("cat:open:", b.staffOnly(b.handleCategoryOpen))
	r.CallbackPrefix("cat:del:", b.staffOnly(b.handleCategoryDelete))
	r.CallbackPrefix("sub:add:", b.staffOnly(b.handleSubcategoryAddStart))
	r.CallbackPrefix("sub:del:", b.staffOnly(b.handleSubcategoryDelete))
	r.Callback("svc:add:-", b.staffOnly(b.handleServiceAddStart))
	r.Callback("svc:import:-", b.staffOnly(b.handleServicesImportStart))
	r.CallbackPrefix("svc:del:", b.staffOnly(b.handleServiceDelete))
	r.StateText(models.StateAwaitingCategoryName, b.staffOnly(b.handleCategoryNameInput))
	r.StateText(models.StateAwaitingSubcategoryName, b.staffOnly(b.handleSubcategoryNameInput))
	r.StateText(models.StateAwaitingServiceName, b.staffOnly(b.handleServiceNameInput))
	r.StateText(models.StateAwaitingTaxonomyImport, b.staffOnly(b.handleTaxonomyDocument))
	r.StateText(models.StateAwaitingServiceImport, b.staffOnly(b.handleServicesDocument))

	// Статистика
	r.Callback("stats:month:-", b.staffOnly(b.handleStatsMonth))
	r.Callback("stats:week:-", b.staffOnly(b.handleStatsWeek))
	r.Callback("stats:excel:-", b.staffOnly(b.handleStatsExcel))

	// Рассылка
	r.Callback("bc:confirm:-", b.staffOnly(b.handleBroadcastConfirm))
	r.Callback("bc:cancel:-", b.staffOnly(b.handleBroadcastCancel))
	r.StateText(models.StateAwaitingBroadcastText, b.staffOnly(b.handleBroadcastMessage))

	// Доступы
	r.CallbackPrefix("acc:", b.adminOnly(b.handleAccessAction))
	r.StateText(models.StateAwaitingUsername, b.adminOnly(b.handleUsernameInput))

	r.Fallback(b.handleUnknown)

	return r
}

// staffOnly пропускает администраторов и модераторов.
func (b *Bot) staffOnly(h HandlerFunc) HandlerFunc {
	return func(ctx context.Context, update tgbotapi.Update) {
		user := userFrom(ctx)
		if user == nil || !user.IsStaff() {
			b.denyAccess(update)
			return
		}
		h(ctx, update)
	}
}

// adminOnly пропускает только администраторов.
func (b *Bot) adminOnly(h HandlerFunc) HandlerFunc {
	return func(ctx context.Context, update tgbotapi.Update) {
		user := userFrom(ctx)
		if user == nil || user.Role != models.RoleAdmin {
			b.denyAccess(update)
			return
		}
		h(ctx, update)
	}
}

func (b *Bot) denyAccess(update tgbotapi.Update) {
	const text = "⛔ Эта функция вам недоступна."
	if update.CallbackQuery != nil {
		b.answerCallback(update.CallbackQuery.ID, text)
		return
	}
	if update.Message != nil {
		b.sendMessage(update.Message.Chat.ID, text)
	}
}

func (b *Bot) handleUnknown(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil {
		return
	}
	b.sendMessage(update.Message.Chat.ID,
		"Чтобы оценить работу специалиста, перейдите по его персональной ссылке или отсканируйте QR-код.")
}
