package i18n

var ruRUCatalog = &Catalog{
	locale: "ru-RU",
	messages: map[string]string{
		CodeUnknown: "Что-то пошло не так, попробуйте ещё раз",

		// Room errors
		CodeRoomAlreadyExists: "Игровая комната в этом чате уже существует",
		CodeRoomNotFound:      "В этом чате нет игровой комнаты, сначала введите /start",
		CodeRoomNoGame:        "В этой комнате нет запущенной игры",

		// Participant errors
		CodeAlreadyMember: "Вы уже добавлены в игру",
		CodeNotMember:     "Вы не участвуете в этой игре",
		CodeUnknownUser:   "Вы не участвуете в игре, сначала введите /add_me",

		// Conversation errors
		CodeInvalidInState: "Эта команда сейчас недоступна",

		// Round errors
		CodeNoSubmissions:   "Никто ещё не прислал определение, голосование нельзя начать",
		CodePollClosed:      "Голосование в этом раунде уже закончилось",
		CodePollNotOpen:     "В этом раунде нет открытого голосования",
		CodeRoundsExhausted: "Слова закончились",

		// Correlation errors
		CodeCorrelationNotFound: "Не удалось сопоставить ваш ответ с текущим раундом",

		// Collaborator errors
		CodeProviderUnavailable: "Источник слов недоступен, попробуйте начать игру позже",
		CodeTemplateMissing:     "Шаблон сообщения {{.Key}} не найден",
	},
}
