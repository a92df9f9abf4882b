package catalog

import "path/filepath"

// DefaultPrograms returns the programs compiled into the bot.
func DefaultPrograms() []Program {
	return []Program{
		{
			Key:         "full_body_3",
			Title:       "🏋️ Фулбади 3 раза в неделю",
			Description: "Базовая программа на всё тело для новичков и возвращения после перерыва.",
			WeeklyDays:  3,
			Days: []WorkoutDay{
				{Title: "День 1 — Приседания и жим", Exercises: []Exercise{
					{Name: "Приседания со штангой", Sets: 4, Reps: "6-8"},
					{Name: "Жим штанги лёжа", Sets: 4, Reps: "6-8"},
					{Name: "Тяга верхнего блока", Sets: 3, Reps: "10-12"},
					{Name: "Планка", Sets: 3, Reps: "40 сек", Note: "спина ровная"},
				}},
				{Title: "День 2 — Тяга и плечи", Exercises: []Exercise{
					{Name: "Румынская тяга", Sets: 4, Reps: "8-10"},
					{Name: "Жим гантелей сидя", Sets: 3, Reps: "8-10"},
					{Name: "Тяга гантели в наклоне", Sets: 3, Reps: "10-12", Note: "на каждую руку"},
					{Name: "Подъём ног в висе", Sets: 3, Reps: "12-15"},
				}},
				{Title: "День 3 — Ноги и спина", Exercises: []Exercise{
					{Name: "Жим ногами", Sets: 4, Reps: "10-12"},
					{Name: "Подтягивания", Sets: 4, Reps: "макс", Note: "с резиной, если нужно"},
					{Name: "Отжимания на брусьях", Sets: 3, Reps: "8-12"},
					{Name: "Выпады с гантелями", Sets: 3, Reps: "10-12", Note: "на каждую ногу"},
					{Name: "Гиперэкстензия", Sets: 3, Reps: "15"},
				}},
			},
		},
		{
			Key:         "upper_lower_4",
			Title:       "💪 Верх/низ 4 раза в неделю",
			Description: "Сплит для тех, кто тренируется дольше полугода.",
			WeeklyDays:  4,
			Days: []WorkoutDay{
				{Title: "Верх A", Exercises: []Exercise{
					{Name: "Жим штанги лёжа", Sets: 4, Reps: "5-6"},
					{Name: "Тяга штанги в наклоне", Sets: 4, Reps: "6-8"},
					{Name: "Армейский жим", Sets: 3, Reps: "8-10"},
					{Name: "Подъём штанги на бицепс", Sets: 3, Reps: "10-12"},
				}},
				{Title: "Низ A", Exercises: []Exercise{
					{Name: "Приседания со штангой", Sets: 4, Reps: "5-6"},
					{Name: "Румынская тяга", Sets: 3, Reps: "8-10"},
					{Name: "Сгибания ног в тренажёре", Sets: 3, Reps: "12"},
					{Name: "Подъёмы на носки", Sets: 4, Reps: "15"},
				}},
				{Title: "Верх B", Exercises: []Exercise{
					{Name: "Жим гантелей на наклонной", Sets: 4, Reps: "8-10"},
					{Name: "Подтягивания", Sets: 4, Reps: "6-10"},
					{Name: "Махи гантелями в стороны", Sets: 3, Reps: "12-15"},
					{Name: "Французский жим", Sets: 3, Reps: "10-12"},
				}},
				{Title: "Низ B", Exercises: []Exercise{
					{Name: "Становая тяга", Sets: 3, Reps: "4-5", Note: "без отказа"},
					{Name: "Болгарские выпады", Sets: 3, Reps: "8-10", Note: "на каждую ногу"},
					{Name: "Разгибания ног в тренажёре", Sets: 3, Reps: "12-15"},
					{Name: "Скручивания на блоке", Sets: 3, Reps: "15"},
				}},
			},
		},
	}
}

// DefaultAssets returns the guide files resolved under dir.
func DefaultAssets(dir string) []Asset {
	return []Asset{
		{Key: "mass", Label: "📘 Массонаборный гайд", Kind: KindDocument, Path: filepath.Join(dir, "mass_guild.pdf")},
		{Key: "recomp", Label: "⚖️ Гайд на рекомпозицию", Kind: KindDocument, Path: filepath.Join(dir, "recomp_guide.pdf")},
		{Key: "sportpit", Label: "🍽️ Спортпит", Kind: KindDocument, Path: filepath.Join(dir, "sportpit.pdf")},
		{Key: "gastro", Label: "🫀 Гайд по ЖКТ", Kind: KindDocument, Path: filepath.Join(dir, "Gayd_po_ZHKT.docx")},
		{Key: "warmup", Label: "🎥 Разминка (видео)", Kind: KindVideo, Path: filepath.Join(dir, "Obshesustavnaya_razminka.mp4"), Caption: "Общесуставная разминка"},
	}
}
